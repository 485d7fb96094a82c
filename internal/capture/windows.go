package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

type Window struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Bounds Region `json:"bounds"`
}

type WindowLister interface {
	Supported() bool
	ListWindows(ctx context.Context) ([]Window, error)
}

type rawWindow struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Owner  string `json:"owner"`
	Layer  int    `json:"layer"`
	Bounds struct {
		X      float64 `json:"X"`
		Y      float64 `json:"Y"`
		Width  float64 `json:"Width"`
		Height float64 `json:"Height"`
	} `json:"bounds"`
}

// parseWindowList decodes the JSON emitted by the window enumeration script,
// keeping normal-layer windows with a visible area.
func parseWindowList(data []byte) ([]Window, error) {
	var raw []rawWindow
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode window list: %w", err)
	}

	windows := make([]Window, 0, len(raw))
	for _, w := range raw {
		if w.Layer != 0 {
			continue
		}
		b := Region{
			X:      int(w.Bounds.X),
			Y:      int(w.Bounds.Y),
			Width:  int(w.Bounds.Width),
			Height: int(w.Bounds.Height),
		}
		if b.Empty() {
			continue
		}
		windows = append(windows, Window{
			ID:     strconv.FormatInt(w.ID, 10),
			Title:  w.Title,
			Owner:  w.Owner,
			Bounds: b,
		})
	}
	return windows, nil
}

func findWindow(windows []Window, handle string) (Window, bool) {
	for _, w := range windows {
		if w.ID == handle {
			return w, true
		}
	}
	return Window{}, false
}

