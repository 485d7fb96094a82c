package bootstrap

import (
	"fmt"
	"os"
	"time"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/backend"
	"github.com/eleven-am/screen-assistant/internal/capture"
	"github.com/eleven-am/screen-assistant/internal/ocr"
	"github.com/eleven-am/screen-assistant/internal/settings"
	"github.com/eleven-am/screen-assistant/internal/synthesis"
	"github.com/eleven-am/screen-assistant/internal/transcription"
)

type Config struct {
	ServerAddr string
	LogLevel   string
	LogFile    string

	HistoryDSN string
	RedisAddr  string
	ContextTTL time.Duration

	ConsoleEnabled   bool
	ConsoleClipboard bool
	ConsoleStyle     string

	Capture       capture.Config
	ContextPolicy assistant.ContextPolicy
	OCR           ocr.Config

	Backend        backend.Config
	SystemPrompt   string
	PromptTemplate string

	Synthesis     synthesis.Config
	Transcription transcription.Config
}

func ProvideSettings() (*settings.Store, error) {
	return settings.Open(getEnv("SETTINGS_FILE", settings.DefaultPath))
}

func LoadConfig(s *settings.Store) (*Config, error) {
	captureCfg, err := loadCaptureConfig(s)
	if err != nil {
		return nil, err
	}

	policy, err := assistant.ParseContextPolicy(s.String("CAPTURE_CONTEXT_POLICY", string(assistant.LastWriterWins)))
	if err != nil {
		return nil, err
	}

	voiceKind, err := synthesis.ParseKind(s.String("TTS_ENGINE", "os"))
	if err != nil {
		return nil, err
	}

	openAIKey := s.String("AI_OPENAI_API_KEY", "")

	return &Config{
		ServerAddr: s.String("SERVER_ADDR", "127.0.0.1:8765"),
		LogLevel:   s.String("LOG_LEVEL", "info"),
		LogFile:    s.String("LOG_FILE", ""),

		HistoryDSN: s.String("HISTORY_DSN", "assistant.db"),
		RedisAddr:  s.String("REDIS_ADDR", ""),
		ContextTTL: s.Duration("CONTEXT_TTL", 10*time.Minute),

		ConsoleEnabled:   s.Bool("CONSOLE_ENABLED", true),
		ConsoleClipboard: s.Bool("CONSOLE_CLIPBOARD", false),
		ConsoleStyle:     s.String("CONSOLE_STYLE", "dark"),

		Capture:       captureCfg,
		ContextPolicy: policy,
		OCR: ocr.Config{
			Binary: s.String("OCR_TESSERACT", "tesseract"),
			Lang:   s.String("OCR_LANG", "jpn+eng"),
			Scale:  s.Float("OCR_SCALE", 1),
		},

		Backend: backend.Config{
			Kind:           backend.ParseKind(s.String("AI_MODEL", "openai")),
			OpenAIKey:      openAIKey,
			OpenAIModel:    s.String("AI_OPENAI_MODEL", "gpt-4o"),
			OpenAIBaseURL:  s.String("AI_OPENAI_BASE_URL", ""),
			GeminiKey:      s.String("AI_GEMINI_API_KEY", ""),
			GeminiModel:    s.String("AI_GEMINI_MODEL", "gemini-pro"),
			GeminiEndpoint: s.String("AI_GEMINI_ENDPOINT", ""),
			OllamaURL:      s.String("AI_OLLAMA_URL", "http://localhost:11434"),
			OllamaModel:    s.String("AI_OLLAMA_MODEL", "llama2"),
		},
		SystemPrompt:   s.String("AI_SYSTEM_PROMPT", ""),
		PromptTemplate: s.String("AI_PROMPT_TEMPLATE", assistant.DefaultPromptTemplate),

		Synthesis: synthesis.Config{
			Kind:     voiceKind,
			Rate:     s.Float("TTS_RATE", 1.0),
			Volume:   s.Float("TTS_VOLUME", 1.0),
			Voice:    s.String("TTS_VOICE", ""),
			Endpoint: s.String("TTS_VOICEVOX_HOST", "http://localhost:50021"),
			Speaker:  s.Int("TTS_VOICEVOX_SPEAKER", 1),
			Player:   s.String("TTS_PLAYER", ""),
		},

		Transcription: transcription.Config{
			APIKey:      s.String("STT_API_KEY", openAIKey),
			BaseURL:     s.String("STT_BASE_URL", ""),
			Model:       s.String("STT_MODEL", "whisper-1"),
			Language:    s.String("STT_LANGUAGE", "ja"),
			Timeout:     s.Duration("STT_TIMEOUT", 5*time.Second),
			PhraseLimit: s.Duration("STT_PHRASE_LIMIT", 10*time.Second),
			MicCommand:  s.String("STT_MIC_COMMAND", ""),
			SampleRate:  s.Int("STT_SAMPLE_RATE", 16000),
		},
	}, nil
}

func loadCaptureConfig(s *settings.Store) (capture.Config, error) {
	mode, err := capture.ParseMode(s.String("CAPTURE_MODE", string(capture.ModeFull)))
	if err != nil {
		return capture.Config{}, err
	}

	cfg := capture.Config{
		Mode:    mode,
		Cadence: s.Float("CAPTURE_FPS", 2),
		Display: s.Int("CAPTURE_DISPLAY", 0),
	}
	switch mode {
	case capture.ModeRegion:
		region, err := capture.ParseRegion(s.String("CAPTURE_REGION", ""))
		if err != nil {
			return capture.Config{}, err
		}
		cfg.Region = &region
	case capture.ModeWindow:
		cfg.WindowHandle = s.String("CAPTURE_WINDOW", "")
	}

	if err := cfg.Validate(); err != nil {
		return capture.Config{}, fmt.Errorf("capture settings: %w", err)
	}
	return cfg, nil
}

func (c *Config) AssistantConfig() assistant.Config {
	return assistant.Config{
		Capture:        c.Capture,
		Backend:        c.Backend.Kind,
		Voice:          c.Synthesis.Kind,
		PromptTemplate: c.PromptTemplate,
		SystemPrompt:   c.SystemPrompt,
		ContextPolicy:  c.ContextPolicy,
		ListenTimeout:  c.Transcription.Timeout,
		PhraseLimit:    c.Transcription.PhraseLimit,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
