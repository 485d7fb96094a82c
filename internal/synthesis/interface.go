package synthesis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

// Synthesizer speaks text as a side effect. Speak always returns; failures
// are logged by the implementation.
type Synthesizer interface {
	Name() string
	Speak(ctx context.Context, text string)
}

type Player interface {
	Play(ctx context.Context, path string) error
}

func New(cfg Config, logger *slog.Logger) (Synthesizer, error) {
	switch cfg.Kind {
	case KindLocal:
		return NewLocalVoice(cfg, logger), nil
	case KindVoicevox:
		return NewVoicevox(cfg, NewPlayer(cfg.Player), logger), nil
	default:
		return nil, fmt.Errorf("voice engine %q: %w", cfg.Kind, shared.ErrInvalidConfig)
	}
}
