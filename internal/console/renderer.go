package console

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
)

const (
	defaultStyle      = "dark"
	defaultContextMax = 120
)

var (
	contextColor = color.RGB(150, 150, 150)
	errorColor   = color.RGB(250, 150, 150)
	promptColor  = color.RGB(120, 180, 250)
)

type RendererConfig struct {
	Style      string
	ContextMax int
	Clipboard  bool
}

// Renderer prints pipeline results to the terminal. It is registered as a
// coordinator listener, so calls arrive from worker goroutines.
type Renderer struct {
	mu         sync.Mutex
	out        io.Writer
	style      string
	contextMax int
	clipboard  bool
	copy       func(string) error
	render     func(text, style string) (string, error)
	logger     *slog.Logger
}

func NewRenderer(out io.Writer, cfg RendererConfig, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Style == "" {
		cfg.Style = defaultStyle
	}
	if cfg.ContextMax <= 0 {
		cfg.ContextMax = defaultContextMax
	}
	return &Renderer{
		out:        out,
		style:      cfg.Style,
		contextMax: cfg.ContextMax,
		clipboard:  cfg.Clipboard,
		copy:       clipboard.WriteAll,
		render:     glamour.Render,
		logger:     logger.With("component", "console_renderer"),
	}
}

func (r *Renderer) OnScreenContextUpdated(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contextColor.Fprintln(r.out, "[screen] "+truncate(oneLine(text), r.contextMax))
}

func (r *Renderer) OnAnswerReceived(text string) {
	if r.clipboard {
		if err := r.copy(text); err != nil {
			r.logger.Warn("copy answer to clipboard failed", "error", err)
		}
	}

	out, err := r.render(text, r.style)
	if err != nil {
		r.logger.Warn("render answer failed", "error", err)
		out = text + "\n"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, out)
}

func (r *Renderer) Info(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, text)
}

func (r *Renderer) Error(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	errorColor.Fprintln(r.out, text)
}

func (r *Renderer) Prompt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	promptColor.Fprint(r.out, "> ")
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
