package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Voicevox struct {
	httpClient *http.Client
	endpoint   string
	speaker    int
	rate       float64
	volume     float64
	tempDir    string
	player     Player
	logger     *slog.Logger

	mu sync.Mutex
}

func NewVoicevox(cfg Config, player Player, logger *slog.Logger) *Voicevox {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:50021"
	}
	speaker := cfg.Speaker
	if logger == nil {
		logger = slog.Default()
	}
	return &Voicevox{
		httpClient: &http.Client{},
		endpoint:   strings.TrimRight(endpoint, "/"),
		speaker:    speaker,
		rate:       cfg.rate(),
		volume:     cfg.volume(),
		tempDir:    cfg.TempDir,
		player:     player,
		logger:     logger.With("component", "synthesis", "engine", "voicevox", "speaker", speaker),
	}
}

func (v *Voicevox) Name() string {
	return "voicevox"
}

// Speak holds the instance lock for query, synthesis and playback so two
// answers never interleave on one engine. Long answers are spoken sentence
// by sentence; the first failure abandons the rest.
func (v *Voicevox) Speak(ctx context.Context, text string) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	for _, sentence := range sentences {
		if err := v.speak(ctx, sentence); err != nil {
			v.logger.Error("voicevox speech failed", "error", err, "sentences", len(sentences))
			return
		}
	}
}

func (v *Voicevox) speak(ctx context.Context, text string) error {
	query, err := v.audioQuery(ctx, text)
	if err != nil {
		return err
	}

	audio, err := v.synthesize(ctx, query)
	if err != nil {
		return err
	}

	if err := v.play(ctx, audio); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}

func (v *Voicevox) audioQuery(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(v.speaker))

	body, err := v.post(ctx, "/audio_query?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("audio query: %w", err)
	}
	return v.tune(body)
}

// tune applies rate and volume to the query object, leaving every other
// field as the server produced it.
func (v *Voicevox) tune(query []byte) ([]byte, error) {
	if v.rate == 1 && v.volume == 1 {
		return query, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(query, &fields); err != nil {
		return nil, fmt.Errorf("decode audio query: %w", err)
	}
	fields["speedScale"] = json.RawMessage(strconv.FormatFloat(v.rate, 'f', -1, 64))
	fields["volumeScale"] = json.RawMessage(strconv.FormatFloat(v.volume, 'f', -1, 64))
	return json.Marshal(fields)
}

func (v *Voicevox) synthesize(ctx context.Context, query []byte) ([]byte, error) {
	params := url.Values{}
	params.Set("speaker", strconv.Itoa(v.speaker))

	audio, err := v.post(ctx, "/synthesis?"+params.Encode(), query)
	if err != nil {
		return nil, fmt.Errorf("synthesis: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis: empty audio")
	}
	return audio, nil
}

func (v *Voicevox) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

// play writes audio to a temporary file that is removed on every path out.
func (v *Voicevox) play(ctx context.Context, audio []byte) error {
	f, err := os.CreateTemp(v.tempDir, "assistant-voice-*.wav")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if v.player == nil {
		return fmt.Errorf("no audio player configured")
	}
	return v.player.Play(ctx, path)
}
