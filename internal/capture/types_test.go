package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

func TestConfig_Validate(t *testing.T) {
	region := &Region{X: 10, Y: 20, Width: 300, Height: 200}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"full", Config{Mode: ModeFull, Cadence: 2}, false},
		{"region", Config{Mode: ModeRegion, Region: region, Cadence: 1}, false},
		{"window", Config{Mode: ModeWindow, WindowHandle: "42", Cadence: 0.5}, false},
		{"zero cadence", Config{Mode: ModeFull}, true},
		{"negative cadence", Config{Mode: ModeFull, Cadence: -1}, true},
		{"unknown mode", Config{Mode: "tab", Cadence: 1}, true},
		{"region missing", Config{Mode: ModeRegion, Cadence: 1}, true},
		{"region empty", Config{Mode: ModeRegion, Region: &Region{Width: 0, Height: 10}, Cadence: 1}, true},
		{"region outside region mode", Config{Mode: ModeFull, Region: region, Cadence: 1}, true},
		{"window missing", Config{Mode: ModeWindow, Cadence: 1}, true},
		{"window outside window mode", Config{Mode: ModeFull, WindowHandle: "42", Cadence: 1}, true},
		{"negative display", Config{Mode: ModeFull, Cadence: 1, Display: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Interval(t *testing.T) {
	tests := []struct {
		cadence float64
		want    time.Duration
	}{
		{2, 500 * time.Millisecond},
		{1, time.Second},
		{0.5, 2 * time.Second},
		{0, time.Second},
	}
	for _, tt := range tests {
		if got := (Config{Cadence: tt.cadence}).Interval(); got != tt.want {
			t.Errorf("cadence %v: expected %v, got %v", tt.cadence, tt.want, got)
		}
	}
}

func TestParseRegion(t *testing.T) {
	r, err := ParseRegion(" 1, 2 ,30,40")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (Region{X: 1, Y: 2, Width: 30, Height: 40}) {
		t.Errorf("unexpected region %+v", r)
	}
	if r.String() != "1,2,30,40" {
		t.Errorf("unexpected string %s", r.String())
	}

	for _, bad := range []string{"", "1,2,3", "a,b,c,d"} {
		if _, err := ParseRegion(bad); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("ParseRegion(%q): expected ErrInvalidConfig, got %v", bad, err)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("Window"); err != nil || m != ModeWindow {
		t.Errorf("expected window, got %s (%v)", m, err)
	}
	if _, err := ParseMode("tab"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSequencer_Monotonic(t *testing.T) {
	var s Sequencer
	prev := uint64(0)
	for i := 0; i < 5; i++ {
		n := s.Next()
		if n <= prev {
			t.Fatalf("sequence went backwards: %d after %d", n, prev)
		}
		prev = n
	}
	if s.Last() != prev {
		t.Errorf("expected last %d, got %d", prev, s.Last())
	}
}
