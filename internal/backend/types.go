package backend

import (
	"context"
	"strings"
)

type Kind string

const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
	KindOllama Kind = "ollama"
)

// ParseKind accepts vendor names and the generic role names. Anything else
// is passed through so the resulting backend answers with the unsupported
// marker.
func ParseKind(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "remote-chat", "chat":
		return KindOpenAI
	case "gemini", "gemini-pro", "remote-generative", "generative":
		return KindGemini
	case "ollama", "local-inference", "local":
		return KindOllama
	default:
		return Kind(strings.TrimSpace(s))
	}
}

type Config struct {
	Kind Kind

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiKey      string
	GeminiModel    string
	GeminiEndpoint string

	OllamaURL   string
	OllamaModel string
}

func (c Config) WithKind(kind Kind) Config {
	c.Kind = kind
	return c
}

type Assistant interface {
	Name() string
	Ask(ctx context.Context, prompt, system string) string
}

type completer interface {
	complete(ctx context.Context, prompt, system string) (string, error)
}
