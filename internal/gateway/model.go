package gateway

import (
	"context"
	"time"

	"github.com/eleven-am/screen-assistant/internal/assistant"
	"github.com/eleven-am/screen-assistant/internal/capture"
	"github.com/eleven-am/screen-assistant/internal/history"
	"github.com/eleven-am/screen-assistant/internal/ocr"
)

type EventType string

const (
	EventScreenContext EventType = "screen_context"
	EventAnswer        EventType = "answer"
)

type Event struct {
	Type      EventType `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Controller is the part of the coordinator the control surface drives.
type Controller interface {
	SubmitText(text string) bool
	ToggleCapture(on bool) error
	SelectCaptureTarget(cfg capture.Config) error
	ToggleVoiceInput(on bool) error
	SelectBackend(kind string) error
	SelectVoice(kind string) error
	ListWindows(ctx context.Context) ([]capture.Window, error)
	Context() ocr.ScreenContext
	Status() assistant.Status
}

type TurnLister interface {
	Recent(ctx context.Context, limit, offset int) ([]*history.TurnRecord, error)
}

type ContextLog interface {
	Range(ctx context.Context, since, until time.Time, limit int) ([]ocr.ScreenContext, error)
}

type SettingsStore interface {
	All() map[string]string
	SetKey(name, value string)
	Save() error
}

type PromptRequest struct {
	Text string `json:"text"`
}

type PromptResponse struct {
	Accepted bool `json:"accepted"`
}

type ToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

type CaptureTargetRequest struct {
	Mode    string          `json:"mode"`
	Region  *capture.Region `json:"region,omitempty"`
	Window  string          `json:"window,omitempty"`
	FPS     float64         `json:"fps,omitempty"`
	Display int             `json:"display,omitempty"`
}

type KindRequest struct {
	Kind string `json:"kind"`
}

type WindowsResponse struct {
	Windows []capture.Window `json:"windows"`
}

type TurnsResponse struct {
	Turns  []*history.TurnRecord `json:"turns"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type ContextHistoryResponse struct {
	Contexts []ocr.ScreenContext `json:"contexts"`
}

type SettingsResponse struct {
	Settings map[string]string `json:"settings"`
}
