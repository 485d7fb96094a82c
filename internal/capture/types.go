package capture

import (
	"fmt"
	"image"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

type Mode string

const (
	ModeFull   Mode = "full"
	ModeRegion Mode = "region"
	ModeWindow Mode = "window"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFull, ModeRegion, ModeWindow:
		return m, nil
	default:
		return "", fmt.Errorf("capture mode %q: %w", s, shared.ErrInvalidConfig)
	}
}

type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.X, r.Y, r.Width, r.Height)
}

// ParseRegion reads the "x,y,width,height" form used in settings.
func ParseRegion(s string) (Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Region{}, fmt.Errorf("region %q: want x,y,width,height: %w", s, shared.ErrInvalidConfig)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Region{}, fmt.Errorf("region %q: %w", s, shared.ErrInvalidConfig)
		}
		vals[i] = v
	}
	return Region{X: vals[0], Y: vals[1], Width: vals[2], Height: vals[3]}, nil
}

type Config struct {
	Mode         Mode    `json:"mode"`
	Region       *Region `json:"region,omitempty"`
	WindowHandle string  `json:"window,omitempty"`
	Cadence      float64 `json:"fps"`
	Display      int     `json:"display"`
}

func (c Config) Validate() error {
	if c.Cadence <= 0 {
		return fmt.Errorf("cadence must be positive, got %v: %w", c.Cadence, shared.ErrInvalidConfig)
	}
	switch c.Mode {
	case ModeFull, ModeRegion, ModeWindow:
	default:
		return fmt.Errorf("capture mode %q: %w", c.Mode, shared.ErrInvalidConfig)
	}

	if c.Mode == ModeRegion {
		if c.Region == nil || c.Region.Empty() {
			return fmt.Errorf("region mode needs a non-empty region: %w", shared.ErrInvalidConfig)
		}
	} else if c.Region != nil {
		return fmt.Errorf("region is only valid in region mode: %w", shared.ErrInvalidConfig)
	}

	hasWindow := strings.TrimSpace(c.WindowHandle) != ""
	if c.Mode == ModeWindow && !hasWindow {
		return fmt.Errorf("window mode needs a window handle: %w", shared.ErrInvalidConfig)
	}
	if c.Mode != ModeWindow && hasWindow {
		return fmt.Errorf("window handle is only valid in window mode: %w", shared.ErrInvalidConfig)
	}
	if c.Display < 0 {
		return fmt.Errorf("display index %d: %w", c.Display, shared.ErrInvalidConfig)
	}
	return nil
}

// Interval is the pause between capture attempts. Capture latency is not
// subtracted.
func (c Config) Interval() time.Duration {
	if c.Cadence <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / c.Cadence)
}

type Frame struct {
	Seq        uint64
	Image      *image.RGBA
	Bounds     image.Rectangle
	CapturedAt time.Time
}

func (f *Frame) Width() int  { return f.Image.Bounds().Dx() }
func (f *Frame) Height() int { return f.Image.Bounds().Dy() }

// Sequencer hands out frame numbers. One instance outlives capture restarts so
// numbers stay monotonic for the life of the process.
type Sequencer struct {
	n atomic.Uint64
}

func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

func (s *Sequencer) Last() uint64 {
	return s.n.Load()
}
