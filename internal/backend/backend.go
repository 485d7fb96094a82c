package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

const (
	UnsupportedMarker = "[unsupported model]"
	UnsupportedName   = "unsupported"
)

// Backend wraps one vendor client. Ask is total: every failure becomes a
// tagged answer string and no call is retried.
type Backend struct {
	kind   Kind
	name   string
	client completer
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}

	b := &Backend{kind: cfg.Kind}
	switch cfg.Kind {
	case KindOpenAI:
		b.name = "OpenAI"
		b.client = newOpenAI(cfg)
	case KindGemini:
		b.name = "Gemini"
		b.client = newGemini(cfg)
	case KindOllama:
		b.name = "Ollama"
		b.client = newOllama(cfg)
	default:
		b.name = UnsupportedName
	}
	b.logger = logger.With("component", "backend", "backend", b.name, "kind", cfg.Kind)
	return b
}

func (b *Backend) Kind() Kind {
	return b.kind
}

func (b *Backend) Name() string {
	return b.name
}

func (b *Backend) Ask(ctx context.Context, prompt, system string) string {
	if b.client == nil {
		b.logger.Warn("unsupported backend", "kind", b.kind)
		return UnsupportedMarker
	}

	answer, err := b.client.complete(ctx, prompt, system)
	if err != nil {
		b.logger.Error("backend request failed", "error", err)
		return fmt.Sprintf("[%s error]: %v", b.name, err)
	}
	return answer
}

// Close releases the vendor client, if it holds one.
func (b *Backend) Close() error {
	if closer, ok := b.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
