package synthesis

import (
	"fmt"
	"strings"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

type Kind string

const (
	KindLocal    Kind = "os"
	KindVoicevox Kind = "voicevox"
)

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "os", "local", "local-voice", "say":
		return KindLocal, nil
	case "voicevox", "networked-voice", "network":
		return KindVoicevox, nil
	default:
		return "", fmt.Errorf("voice engine %q: %w", s, shared.ErrInvalidConfig)
	}
}

type Config struct {
	Kind     Kind
	Rate     float64
	Volume   float64
	Voice    string
	Endpoint string
	Speaker  int
	Player   string
	TempDir  string
}

func (c Config) WithKind(kind Kind) Config {
	c.Kind = kind
	return c
}

func (c Config) rate() float64 {
	if c.Rate <= 0 {
		return 1
	}
	return c.Rate
}

// volume passes 0 through so a configured volume of 0 mutes the engine.
func (c Config) volume() float64 {
	if c.Volume < 0 {
		return 0
	}
	return c.Volume
}
