package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/eleven-am/screen-assistant/internal/gateway"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	Gateway *gateway.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")
	params.Gateway.RegisterRoutes(api)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ProvideLogger writes JSON logs to stderr, or to LOG_FILE when set, keeping
// stdout free for the console.
func ProvideLogger(lc fx.Lifecycle, cfg *Config) (*slog.Logger, error) {
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return f.Close()
			},
		})
		out = f
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return logger, nil
}

var HandlersModule = fx.Options(
	fx.Provide(ProvideLogger),
	fx.Invoke(RegisterRoutes),
)
