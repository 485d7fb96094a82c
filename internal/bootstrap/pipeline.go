package bootstrap

import (
	"context"
	"log/slog"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/backend"
	"github.com/eleven-am/screen-assistant/internal/capture"
	"github.com/eleven-am/screen-assistant/internal/history"
	"github.com/eleven-am/screen-assistant/internal/ocr"
	"github.com/eleven-am/screen-assistant/internal/synthesis"
	"github.com/eleven-am/screen-assistant/internal/transcription"
	"go.uber.org/fx"
)

func ProvideExtractor(cfg *Config, logger *slog.Logger) ocr.Extractor {
	return ocr.NewTesseract(cfg.OCR, logger)
}

func ProvideWindowLister() capture.WindowLister {
	return capture.NewWindowLister()
}

// ProvideRecognizer returns nil without a transcription key; voice input is
// then reported as disabled.
func ProvideRecognizer(cfg *Config, logger *slog.Logger) assistant.Recognizer {
	tc := cfg.Transcription
	if tc.APIKey == "" {
		logger.Info("no transcription key configured, voice input disabled")
		return nil
	}
	mic := transcription.NewMicrophone(tc.MicCommand, tc.SampleRate)
	return transcription.NewRecognizer(tc, mic, transcription.NewWhisper(tc), logger)
}

type PipelineParams struct {
	fx.In

	Config     *Config
	Logger     *slog.Logger
	Extractor  ocr.Extractor
	Windows    capture.WindowLister
	Recognizer assistant.Recognizer `optional:"true"`
	History    *history.Store       `optional:"true"`
	ContextLog *ocr.Store           `optional:"true"`
}

func ProvideCoordinator(lc fx.Lifecycle, params PipelineParams) (*assistant.Coordinator, error) {
	cfg := params.Config
	logger := params.Logger
	screen := capture.NewDisplayScreen()
	seq := &capture.Sequencer{}

	deps := assistant.Deps{
		Extractor:  params.Extractor,
		Recognizer: params.Recognizer,
		Windows:    params.Windows,
		NewSource: func(c capture.Config) (capture.Capturer, error) {
			src, err := capture.NewSource(capture.SourceConfig{
				Capture:   c,
				Screen:    screen,
				Windows:   params.Windows,
				Sequencer: seq,
			})
			if err != nil {
				return nil, err
			}
			return src, nil
		},
		NewBackend: func(kind backend.Kind) backend.Assistant {
			return backend.New(cfg.Backend.WithKind(kind), logger)
		},
		NewVoice: func(kind synthesis.Kind) (synthesis.Synthesizer, error) {
			return synthesis.New(cfg.Synthesis.WithKind(kind), logger)
		},
	}
	if params.History != nil {
		deps.Turns = params.History
	}
	if params.ContextLog != nil {
		deps.Contexts = params.ContextLog
	}

	coordinator, err := assistant.New(cfg.AssistantConfig(), deps, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return coordinator.Shutdown(ctx)
		},
	})
	return coordinator, nil
}

var PipelineModule = fx.Options(
	fx.Provide(
		ProvideExtractor,
		ProvideWindowLister,
		ProvideRecognizer,
		ProvideCoordinator,
	),
)
