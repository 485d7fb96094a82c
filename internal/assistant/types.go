package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eleven-am/screen-assistant/internal/backend"
	"github.com/eleven-am/screen-assistant/internal/capture"
	"github.com/eleven-am/screen-assistant/internal/ocr"
	"github.com/eleven-am/screen-assistant/internal/shared"
	"github.com/eleven-am/screen-assistant/internal/synthesis"
)

type TurnState string

const (
	TurnIdle           TurnState = "idle"
	TurnComposing      TurnState = "composing"
	TurnAwaitingAnswer TurnState = "awaiting_answer"
	TurnSpeaking       TurnState = "speaking"
)

type TurnSource string

const (
	SourceTyped TurnSource = "typed"
	SourceVoice TurnSource = "voice"
)

type Turn struct {
	ID          string     `json:"id"`
	Source      TurnSource `json:"source"`
	UserText    string     `json:"user_text"`
	ScreenText  string     `json:"screen_text"`
	FrameSeq    uint64     `json:"frame_seq"`
	Prompt      string     `json:"prompt"`
	Answer      string     `json:"answer,omitempty"`
	Backend     string     `json:"backend"`
	Voice       string     `json:"voice"`
	State       TurnState  `json:"state"`
	StartedAt   time.Time  `json:"started_at"`
	AnsweredAt  time.Time  `json:"answered_at,omitempty"`
	CompletedAt time.Time  `json:"completed_at,omitempty"`
}

// ContextPolicy decides whether an OCR result may replace the current
// screen context.
type ContextPolicy string

const (
	// LastWriterWins accepts every completed extraction, so a slow
	// extraction of an older frame can replace a newer one.
	LastWriterWins ContextPolicy = "last_writer_wins"
	// NewestFrameWins drops results for frames older than the current one.
	NewestFrameWins ContextPolicy = "newest_frame_wins"
)

func ParseContextPolicy(s string) (ContextPolicy, error) {
	switch p := ContextPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", LastWriterWins:
		return LastWriterWins, nil
	case NewestFrameWins:
		return p, nil
	default:
		return "", fmt.Errorf("context policy %q: %w", s, shared.ErrInvalidConfig)
	}
}

type Config struct {
	Capture         capture.Config
	Backend         backend.Kind
	Voice           synthesis.Kind
	PromptTemplate  string
	SystemPrompt    string
	ContextPolicy   ContextPolicy
	ListenTimeout   time.Duration
	PhraseLimit     time.Duration
	VoiceCyclePause time.Duration
}

type SourceFactory func(cfg capture.Config) (capture.Capturer, error)
type BackendFactory func(kind backend.Kind) backend.Assistant
type VoiceFactory func(kind synthesis.Kind) (synthesis.Synthesizer, error)

type Recognizer interface {
	RecognizeOnce(ctx context.Context, timeout, phraseLimit time.Duration) string
}

type TurnRecorder interface {
	RecordTurn(ctx context.Context, turn Turn) error
}

type ContextRecorder interface {
	Record(ctx context.Context, sc ocr.ScreenContext) error
}

type Deps struct {
	Extractor  ocr.Extractor
	Recognizer Recognizer
	NewSource  SourceFactory
	NewBackend BackendFactory
	NewVoice   VoiceFactory
	Windows    capture.WindowLister
	Turns      TurnRecorder
	Contexts   ContextRecorder
}

type Status struct {
	Capture       string            `json:"capture"`
	CaptureTarget capture.Config    `json:"capture_target"`
	VoiceInput    string            `json:"voice_input"`
	Turn          TurnState         `json:"turn"`
	CurrentTurn   *Turn             `json:"current_turn,omitempty"`
	Backend       string            `json:"backend"`
	Voice         string            `json:"voice"`
	Context       ocr.ScreenContext `json:"context"`
	ContextPolicy ContextPolicy     `json:"context_policy"`
}
