package gateway

import (
	"context"
	"log/slog"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/history"
	"github.com/eleven-am/screen-assistant/internal/ocr"
	"github.com/eleven-am/screen-assistant/internal/settings"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	Coordinator *assistant.Coordinator
	History     *history.Store `optional:"true"`
	ContextLog  *ocr.Store     `optional:"true"`
	Settings    *settings.Store
	Hub         *Hub
	Logger      *slog.Logger
}

func ProvideHub(logger *slog.Logger) *Hub {
	return NewHub(logger)
}

func ProvideHandler(params HandlerParams) *Handler {
	var turns TurnLister
	if params.History != nil {
		turns = params.History
	}
	var contexts ContextLog
	if params.ContextLog != nil {
		contexts = params.ContextLog
	}
	return NewHandler(
		params.Coordinator,
		turns,
		contexts,
		params.Settings,
		params.Hub,
		params.Logger.With("handler", "gateway"),
	)
}

func AttachHub(lc fx.Lifecycle, coordinator *assistant.Coordinator, hub *Hub) {
	coordinator.AddListener(hub)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			hub.Close()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		ProvideHub,
		ProvideHandler,
	),
	fx.Invoke(AttachHub),
)
