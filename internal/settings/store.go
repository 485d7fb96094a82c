package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const DefaultPath = "assistant.env"

// Store holds section/key settings flattened to SECTION_KEY entries.
// Non-empty process environment variables take precedence over stored values.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
	lookup func(string) (string, bool)
}

// Open reads path when it exists; a missing file yields an empty store.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path, values: map[string]string{}, lookup: os.LookupEnv}

	values, err := godotenv.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	for k, v := range values {
		s.values[strings.ToUpper(k)] = v
	}
	return s, nil
}

// NewMemory returns a store that never consults the environment and saves to path.
func NewMemory(path string, values map[string]string) *Store {
	s := &Store{path: path, values: map[string]string{}, lookup: func(string) (string, bool) { return "", false }}
	for k, v := range values {
		s.values[strings.ToUpper(k)] = v
	}
	return s
}

func Key(section, key string) string {
	if section == "" {
		return strings.ToUpper(key)
	}
	return strings.ToUpper(section) + "_" + strings.ToUpper(key)
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Lookup(name string) (string, bool) {
	name = strings.ToUpper(name)
	if v, ok := s.lookup(name); ok && v != "" {
		return v, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[name]
	return v, ok && v != ""
}

func (s *Store) Get(section, key string) string {
	v, _ := s.Lookup(Key(section, key))
	return v
}

func (s *Store) String(name, def string) string {
	if v, ok := s.Lookup(name); ok {
		return v
	}
	return def
}

func (s *Store) Int(name string, def int) int {
	if v, ok := s.Lookup(name); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func (s *Store) Float(name string, def float64) float64 {
	if v, ok := s.Lookup(name); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return def
}

func (s *Store) Bool(name string, def bool) bool {
	if v, ok := s.Lookup(name); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Duration accepts Go duration strings or a bare number of seconds.
func (s *Store) Duration(name string, def time.Duration) time.Duration {
	v, ok := s.Lookup(name)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return def
}

func (s *Store) Set(section, key, value string) {
	s.SetKey(Key(section, key), value)
}

func (s *Store) SetKey(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[strings.ToUpper(name)] = value
}

// Section returns the stored entries of one section keyed by their
// lowercase short name.
func (s *Store) Section(section string) map[string]string {
	prefix := strings.ToUpper(section) + "_"
	out := map[string]string{}
	for name, v := range s.All() {
		if strings.HasPrefix(name, prefix) {
			out[strings.ToLower(strings.TrimPrefix(name, prefix))] = v
		}
	}
	return out
}

// All returns the stored entries with environment overrides applied.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	names := make([]string, 0, len(s.values))
	out := make(map[string]string, len(s.values))
	for name, v := range s.values {
		names = append(names, name)
		out[name] = v
	}
	s.mu.RUnlock()

	for _, name := range names {
		if v, ok := s.lookup(name); ok && v != "" {
			out[name] = v
		}
	}
	return out
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Save writes the stored values, without environment overrides, to the file.
func (s *Store) Save() error {
	s.mu.RLock()
	snapshot := make(map[string]string, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	s.mu.RUnlock()

	if err := godotenv.Write(snapshot, s.path); err != nil {
		return fmt.Errorf("write settings %s: %w", s.path, err)
	}
	return nil
}

// IsSecret reports whether a key holds a credential.
func IsSecret(name string) bool {
	name = strings.ToUpper(name)
	return strings.HasSuffix(name, "_API_KEY") || strings.HasSuffix(name, "_TOKEN") || strings.HasSuffix(name, "_PASSWORD")
}
