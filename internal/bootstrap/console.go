package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/console"
	"go.uber.org/fx"
)

// StartConsole attaches the terminal surface. Leaving the console (EOF or
// /quit) shuts the application down.
func StartConsole(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *Config, coordinator *assistant.Coordinator, logger *slog.Logger) {
	if !cfg.ConsoleEnabled {
		return
	}

	renderer := console.NewRenderer(os.Stdout, console.RendererConfig{
		Style:     cfg.ConsoleStyle,
		Clipboard: cfg.ConsoleClipboard,
	}, logger)
	coordinator.AddListener(renderer)
	repl := console.New(coordinator, os.Stdin, renderer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := repl.Run(ctx); err != nil {
					logger.Error("console stopped", "error", err)
				}
				if ctx.Err() == nil {
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

var ConsoleModule = fx.Options(
	fx.Invoke(StartConsole),
)
