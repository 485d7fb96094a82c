package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/capture"
	"github.com/eleven-am/screen-assistant/internal/settings"
	"github.com/eleven-am/screen-assistant/internal/shared"
	"github.com/labstack/echo/v4"
)

const (
	defaultTurnLimit    = 20
	maxTurnLimit        = 200
	defaultContextLimit = 50
	defaultContextSince = 10 * time.Minute
)

var settingKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

type Handler struct {
	controller Controller
	turns      TurnLister
	contexts   ContextLog
	settings   SettingsStore
	hub        *Hub
	logger     *slog.Logger
}

// NewHandler builds the control surface. turns, contexts and store may be
// nil when the matching component is disabled.
func NewHandler(controller Controller, turns TurnLister, contexts ContextLog, store SettingsStore, hub *Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		controller: controller,
		turns:      turns,
		contexts:   contexts,
		settings:   store,
		hub:        hub,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/prompt", h.SubmitPrompt)
	g.PUT("/capture", h.ToggleCapture)
	g.PUT("/capture/target", h.SelectCaptureTarget)
	g.PUT("/voice-input", h.ToggleVoiceInput)
	g.PUT("/backend", h.SelectBackend)
	g.PUT("/voice", h.SelectVoice)
	g.GET("/state", h.State)
	g.GET("/context", h.Context)
	g.GET("/context/history", h.ContextHistory)
	g.GET("/turns", h.Turns)
	g.GET("/windows", h.Windows)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	if h.hub != nil {
		g.GET("/events", h.hub.HandleEvents)
	}
}

func (h *Handler) SubmitPrompt(c echo.Context) error {
	var req PromptRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return shared.BadRequest("empty_text", "text is required")
	}

	if !h.controller.SubmitText(req.Text) {
		return shared.ServiceUnavailable("shutting_down", "assistant is shutting down")
	}
	return c.JSON(http.StatusAccepted, PromptResponse{Accepted: true})
}

func (h *Handler) ToggleCapture(c echo.Context) error {
	on, err := bindToggle(c)
	if err != nil {
		return err
	}
	if err := h.controller.ToggleCapture(on); err != nil {
		h.logger.Warn("toggle capture failed", "enabled", on, "error", err)
		return controllerError(err)
	}
	return c.JSON(http.StatusOK, h.controller.Status())
}

func (h *Handler) SelectCaptureTarget(c echo.Context) error {
	var req CaptureTargetRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	mode, err := capture.ParseMode(req.Mode)
	if err != nil {
		return shared.BadRequest("invalid_mode", err.Error())
	}

	cfg := capture.Config{
		Mode:         mode,
		Region:       req.Region,
		WindowHandle: req.Window,
		Cadence:      req.FPS,
		Display:      req.Display,
	}
	if cfg.Cadence == 0 {
		cfg.Cadence = h.controller.Status().CaptureTarget.Cadence
	}

	if err := h.controller.SelectCaptureTarget(cfg); err != nil {
		h.logger.Warn("select capture target failed", "mode", mode, "error", err)
		return controllerError(err)
	}
	return c.JSON(http.StatusOK, h.controller.Status())
}

func (h *Handler) ToggleVoiceInput(c echo.Context) error {
	on, err := bindToggle(c)
	if err != nil {
		return err
	}
	if err := h.controller.ToggleVoiceInput(on); err != nil {
		h.logger.Warn("toggle voice input failed", "enabled", on, "error", err)
		return controllerError(err)
	}
	return c.JSON(http.StatusOK, h.controller.Status())
}

func (h *Handler) SelectBackend(c echo.Context) error {
	kind, err := bindKind(c)
	if err != nil {
		return err
	}
	if err := h.controller.SelectBackend(kind); err != nil {
		return controllerError(err)
	}
	return c.JSON(http.StatusOK, h.controller.Status())
}

func (h *Handler) SelectVoice(c echo.Context) error {
	kind, err := bindKind(c)
	if err != nil {
		return err
	}
	if err := h.controller.SelectVoice(kind); err != nil {
		return controllerError(err)
	}
	return c.JSON(http.StatusOK, h.controller.Status())
}

func (h *Handler) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.controller.Status())
}

func (h *Handler) Context(c echo.Context) error {
	return c.JSON(http.StatusOK, h.controller.Context())
}

func (h *Handler) ContextHistory(c echo.Context) error {
	if h.contexts == nil {
		return shared.ServiceUnavailable("context_log_disabled", "screen context log is not configured")
	}

	since := defaultContextSince
	if raw := c.QueryParam("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return shared.BadRequest("invalid_since", "since must be a positive duration")
		}
		since = d
	}
	limit := queryInt(c, "limit", defaultContextLimit)

	now := time.Now()
	contexts, err := h.contexts.Range(c.Request().Context(), now.Add(-since), now, limit)
	if err != nil {
		h.logger.Error("failed to read context log", "error", err)
		return shared.InternalError("context_log_failed", "failed to read screen context log")
	}
	return c.JSON(http.StatusOK, ContextHistoryResponse{Contexts: contexts})
}

func (h *Handler) Turns(c echo.Context) error {
	if h.turns == nil {
		return shared.ServiceUnavailable("history_disabled", "turn history is not configured")
	}

	limit := queryInt(c, "limit", defaultTurnLimit)
	if limit > maxTurnLimit {
		limit = maxTurnLimit
	}
	offset := queryInt(c, "offset", 0)

	turns, err := h.turns.Recent(c.Request().Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list turns", "error", err)
		return shared.InternalError("history_failed", "failed to list turns")
	}
	return c.JSON(http.StatusOK, TurnsResponse{Turns: turns, Limit: limit, Offset: offset})
}

func (h *Handler) Windows(c echo.Context) error {
	windows, err := h.controller.ListWindows(c.Request().Context())
	if err != nil {
		return controllerError(err)
	}
	return c.JSON(http.StatusOK, WindowsResponse{Windows: windows})
}

func (h *Handler) GetSettings(c echo.Context) error {
	if h.settings == nil {
		return shared.ServiceUnavailable("settings_disabled", "settings are not configured")
	}
	return c.JSON(http.StatusOK, SettingsResponse{Settings: redacted(h.settings.All())})
}

// UpdateSettings stores and saves the given keys. Values equal to the
// redacted form of the current secret are ignored so a GET/PUT round trip
// keeps credentials intact. Changes apply to components built afterwards.
func (h *Handler) UpdateSettings(c echo.Context) error {
	if h.settings == nil {
		return shared.ServiceUnavailable("settings_disabled", "settings are not configured")
	}

	var req SettingsResponse
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}
	if len(req.Settings) == 0 {
		return shared.BadRequest("empty_settings", "settings are required")
	}

	current := h.settings.All()
	for name := range req.Settings {
		if !settingKeyPattern.MatchString(name) {
			return shared.BadRequest("invalid_key", "invalid settings key "+strconv.Quote(name))
		}
	}
	for name, value := range req.Settings {
		if settings.IsSecret(name) && value == shared.Redact(current[name]) {
			continue
		}
		h.settings.SetKey(name, value)
	}

	if err := h.settings.Save(); err != nil {
		h.logger.Error("failed to save settings", "error", err)
		return shared.InternalError("settings_save_failed", "failed to save settings")
	}
	return c.JSON(http.StatusOK, SettingsResponse{Settings: redacted(h.settings.All())})
}

func bindToggle(c echo.Context) (bool, error) {
	var req ToggleRequest
	if err := c.Bind(&req); err != nil {
		return false, shared.BadRequest("invalid_request", "invalid request body")
	}
	if req.Enabled == nil {
		return false, shared.BadRequest("missing_enabled", "enabled is required")
	}
	return *req.Enabled, nil
}

func bindKind(c echo.Context) (string, error) {
	var req KindRequest
	if err := c.Bind(&req); err != nil {
		return "", shared.BadRequest("invalid_request", "invalid request body")
	}
	if strings.TrimSpace(req.Kind) == "" {
		return "", shared.BadRequest("missing_kind", "kind is required")
	}
	return req.Kind, nil
}

func queryInt(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

func controllerError(err error) error {
	if errors.Is(err, assistant.ErrClosed) {
		return shared.ServiceUnavailable("shutting_down", err.Error())
	}
	return shared.FromError(err)
}

func redacted(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if settings.IsSecret(k) {
			v = shared.Redact(v)
		}
		out[k] = v
	}
	return out
}
