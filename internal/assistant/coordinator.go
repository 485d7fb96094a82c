package assistant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/screen-assistant/internal/backend"
	"github.com/eleven-am/screen-assistant/internal/capture"
	"github.com/eleven-am/screen-assistant/internal/ocr"
	"github.com/eleven-am/screen-assistant/internal/shared"
	"github.com/eleven-am/screen-assistant/internal/synthesis"
)

var (
	ErrClosed       = errors.New("coordinator is shut down")
	ErrNoRecognizer = fmt.Errorf("voice input: %w", shared.ErrDisabled)
)

const recordTimeout = 2 * time.Second

type Coordinator struct {
	cfg       Config
	deps      Deps
	log       *slog.Logger
	listeners listeners

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	publishMu sync.Mutex
	contextMu sync.RWMutex
	screen    ocr.ScreenContext

	gate      chan struct{}
	turnMu    sync.Mutex
	turnState TurnState
	current   *Turn

	mu           sync.Mutex
	captureCfg   capture.Config
	loop         *capture.Loop
	assistant    backend.Assistant
	voice        synthesis.Synthesizer
	voiceOn      bool
	voiceRunning bool
	closed       bool
}

func New(cfg Config, deps Deps, log *slog.Logger) (*Coordinator, error) {
	if log == nil {
		log = slog.Default()
	}
	if deps.Extractor == nil || deps.NewSource == nil || deps.NewBackend == nil || deps.NewVoice == nil {
		return nil, fmt.Errorf("coordinator needs an extractor and source, backend and voice factories: %w", shared.ErrInvalidConfig)
	}
	if cfg.PromptTemplate == "" {
		cfg.PromptTemplate = DefaultPromptTemplate
	}
	if cfg.ContextPolicy == "" {
		cfg.ContextPolicy = LastWriterWins
	}
	if cfg.VoiceCyclePause <= 0 {
		cfg.VoiceCyclePause = 200 * time.Millisecond
	}

	voice, err := deps.NewVoice(cfg.Voice)
	if err != nil {
		return nil, fmt.Errorf("voice: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		cfg:        cfg,
		deps:       deps,
		log:        log.With("component", "coordinator"),
		ctx:        ctx,
		cancel:     cancel,
		gate:       make(chan struct{}, 1),
		turnState:  TurnIdle,
		captureCfg: cfg.Capture,
		assistant:  deps.NewBackend(cfg.Backend),
		voice:      voice,
	}
	return c, nil
}

func (c *Coordinator) AddListener(l Listener) {
	c.listeners.add(l)
}

func (c *Coordinator) ToggleCapture(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if on {
		if c.closed {
			return ErrClosed
		}
		if c.loop != nil {
			return nil
		}
		return c.startCaptureLocked()
	}

	c.stopCaptureLocked()
	return nil
}

func (c *Coordinator) startCaptureLocked() error {
	src, err := c.deps.NewSource(c.captureCfg)
	if err != nil {
		return fmt.Errorf("capture source: %w", err)
	}

	loop := capture.NewLoop(src, c.captureCfg.Interval(), c.log)
	if err := loop.Start(c.onFrame); err != nil {
		return err
	}
	c.loop = loop
	c.log.Info("capture running", "mode", c.captureCfg.Mode, "fps", c.captureCfg.Cadence)
	return nil
}

func (c *Coordinator) stopCaptureLocked() {
	if c.loop == nil {
		return
	}
	c.loop.Stop()
	c.loop = nil
}

// SelectCaptureTarget replaces the capture configuration. A running capture
// is restarted on the new target; a failure leaves the previous one running.
func (c *Coordinator) SelectCaptureTarget(cfg capture.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.loop == nil {
		if _, err := c.deps.NewSource(cfg); err != nil {
			return fmt.Errorf("capture source: %w", err)
		}
		c.captureCfg = cfg
		return nil
	}

	prev := c.captureCfg
	old := c.loop
	c.captureCfg = cfg
	c.loop = nil
	if err := c.startCaptureLocked(); err != nil {
		c.captureCfg = prev
		c.loop = old
		return err
	}
	old.Stop()
	return nil
}

func (c *Coordinator) onFrame(frame *capture.Frame) {
	c.wg.Add(1)
	go c.extract(frame)
}

func (c *Coordinator) extract(frame *capture.Frame) {
	defer c.wg.Done()

	text := c.deps.Extractor.Extract(c.ctx, frame)
	c.updateContext(ocr.ScreenContext{
		Text:        text,
		FrameSeq:    frame.Seq,
		CompletedAt: time.Now(),
	})
}

// updateContext keeps the context write and the listener notification in
// completion order. The context log is written after publishing.
func (c *Coordinator) updateContext(sc ocr.ScreenContext) {
	if !c.publishContext(sc) {
		return
	}

	if c.deps.Contexts != nil {
		ctx, cancel := context.WithTimeout(c.ctx, recordTimeout)
		defer cancel()
		if err := c.deps.Contexts.Record(ctx, sc); err != nil {
			c.log.Warn("record screen context failed", "error", err)
		}
	}
}

func (c *Coordinator) publishContext(sc ocr.ScreenContext) bool {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.contextMu.Lock()
	if c.cfg.ContextPolicy == NewestFrameWins && sc.FrameSeq < c.screen.FrameSeq {
		current := c.screen.FrameSeq
		c.contextMu.Unlock()
		c.log.Debug("stale extraction dropped", "frame_seq", sc.FrameSeq, "current_seq", current)
		return false
	}
	c.screen = sc
	c.contextMu.Unlock()

	c.listeners.screenContextUpdated(sc.Text)
	return true
}

func (c *Coordinator) Context() ocr.ScreenContext {
	c.contextMu.RLock()
	defer c.contextMu.RUnlock()
	return c.screen
}

func (c *Coordinator) SelectBackend(kind string) error {
	k := backend.ParseKind(kind)
	a := c.deps.NewBackend(k)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	old := c.assistant
	c.assistant = a
	c.log.Info("backend selected", "backend", a.Name())
	if old != a {
		c.retireBackend(old)
	}
	return nil
}

// retireBackend closes a replaced backend once it holds the turn gate, so no
// turn can still be asking it. Callers hold c.mu.
func (c *Coordinator) retireBackend(old backend.Assistant) {
	closer, ok := old.(io.Closer)
	if !ok {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		select {
		case c.gate <- struct{}{}:
			defer func() { <-c.gate }()
		case <-c.ctx.Done():
		}
		if err := closer.Close(); err != nil {
			c.log.Warn("close backend failed", "error", err)
		}
	}()
}

func (c *Coordinator) SelectVoice(kind string) error {
	k, err := synthesis.ParseKind(kind)
	if err != nil {
		return err
	}
	v, err := c.deps.NewVoice(k)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.voice = v
	c.log.Info("voice selected", "voice", v.Name())
	return nil
}

func (c *Coordinator) ListWindows(ctx context.Context) ([]capture.Window, error) {
	if c.deps.Windows == nil || !c.deps.Windows.Supported() {
		return nil, fmt.Errorf("window enumeration: %w", shared.ErrUnsupported)
	}
	return c.deps.Windows.ListWindows(ctx)
}

// SubmitText starts a conversation turn. Empty text is ignored.
func (c *Coordinator) SubmitText(text string) bool {
	return c.submit(text, SourceTyped)
}

func (c *Coordinator) submit(text string, source TurnSource) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.runTurn(text, source)
	}()
	return true
}

func (c *Coordinator) Status() Status {
	c.mu.Lock()
	st := Status{
		Capture:       "stopped",
		CaptureTarget: c.captureCfg,
		VoiceInput:    "off",
		Backend:       c.assistant.Name(),
		Voice:         c.voice.Name(),
		ContextPolicy: c.cfg.ContextPolicy,
	}
	if c.loop != nil {
		st.Capture = "running"
	}
	if c.voiceOn {
		st.VoiceInput = "listening"
	}
	c.mu.Unlock()

	c.turnMu.Lock()
	st.Turn = c.turnState
	if c.current != nil {
		t := *c.current
		st.CurrentTurn = &t
	}
	c.turnMu.Unlock()

	st.Context = c.Context()
	return st
}

// Shutdown stops capture and voice input, then waits for in-flight work.
// If ctx ends first the remaining work is cancelled.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.voiceOn = false
	c.stopCaptureLocked()
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	defer c.cancel()
	select {
	case <-done:
		c.mu.Lock()
		current := c.assistant
		c.mu.Unlock()
		if closer, ok := current.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				c.log.Warn("close backend failed", "error", err)
			}
		}
		c.log.Info("coordinator stopped")
		return nil
	case <-ctx.Done():
		c.log.Warn("coordinator shutdown timed out, cancelling in-flight work")
		return ctx.Err()
	}
}
