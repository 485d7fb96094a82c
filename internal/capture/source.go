package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

var (
	ErrGeometryMismatch = errors.New("captured image does not match requested bounds")
	ErrWindowGone       = errors.New("window not found")
)

type Capturer interface {
	Capture(ctx context.Context) (*Frame, error)
}

type target interface {
	resolve(ctx context.Context) (image.Rectangle, error)
}

type fullTarget struct {
	screen  Screen
	display int
}

func (t fullTarget) resolve(context.Context) (image.Rectangle, error) {
	return t.screen.DisplayBounds(t.display)
}

type regionTarget struct {
	region Region
}

func (t regionTarget) resolve(context.Context) (image.Rectangle, error) {
	return t.region.Rect(), nil
}

type windowTarget struct {
	windows WindowLister
	handle  string
}

func (t windowTarget) resolve(ctx context.Context) (image.Rectangle, error) {
	windows, err := t.windows.ListWindows(ctx)
	if err != nil {
		return image.Rectangle{}, err
	}
	w, ok := findWindow(windows, t.handle)
	if !ok {
		return image.Rectangle{}, fmt.Errorf("window %s: %w", t.handle, ErrWindowGone)
	}
	return w.Bounds.Rect(), nil
}

type Source struct {
	screen Screen
	target target
	seq    *Sequencer
	mode   Mode
}

type SourceConfig struct {
	Capture   Config
	Screen    Screen
	Windows   WindowLister
	Sequencer *Sequencer
}

func NewSource(cfg SourceConfig) (*Source, error) {
	if err := cfg.Capture.Validate(); err != nil {
		return nil, err
	}
	if cfg.Screen == nil {
		cfg.Screen = NewDisplayScreen()
	}
	if cfg.Sequencer == nil {
		cfg.Sequencer = &Sequencer{}
	}

	var t target
	switch cfg.Capture.Mode {
	case ModeFull:
		t = fullTarget{screen: cfg.Screen, display: cfg.Capture.Display}
	case ModeRegion:
		t = regionTarget{region: *cfg.Capture.Region}
	case ModeWindow:
		if cfg.Windows == nil || !cfg.Windows.Supported() {
			return nil, fmt.Errorf("window capture: %w", shared.ErrUnsupported)
		}
		t = windowTarget{windows: cfg.Windows, handle: cfg.Capture.WindowHandle}
	}

	return &Source{
		screen: cfg.Screen,
		target: t,
		seq:    cfg.Sequencer,
		mode:   cfg.Capture.Mode,
	}, nil
}

func (s *Source) Mode() Mode {
	return s.mode
}

// Capture grabs one frame. Geometry is resolved on every call so moved or
// resized windows are followed.
func (s *Source) Capture(ctx context.Context) (*Frame, error) {
	rect, err := s.target.resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve target: %w", err)
	}
	if rect.Empty() {
		return nil, fmt.Errorf("empty capture bounds %v", rect)
	}

	img, err := s.screen.Grab(rect)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("capture returned no image")
	}
	if got := img.Bounds(); got.Dx() != rect.Dx() || got.Dy() != rect.Dy() {
		return nil, fmt.Errorf("%w: want %dx%d, got %dx%d", ErrGeometryMismatch, rect.Dx(), rect.Dy(), got.Dx(), got.Dy())
	}

	return &Frame{
		Seq:        s.seq.Next(),
		Image:      img,
		Bounds:     rect,
		CapturedAt: time.Now(),
	}, nil
}
