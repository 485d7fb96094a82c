package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

type Screen interface {
	DisplayBounds(display int) (image.Rectangle, error)
	Grab(rect image.Rectangle) (*image.RGBA, error)
}

type displayScreen struct{}

func NewDisplayScreen() Screen {
	return displayScreen{}
}

func (displayScreen) DisplayBounds(display int) (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays")
	}
	if display < 0 || display >= n {
		return image.Rectangle{}, fmt.Errorf("display %d out of range (%d active)", display, n)
	}
	return screenshot.GetDisplayBounds(display), nil
}

func (displayScreen) Grab(rect image.Rectangle) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, fmt.Errorf("capture rect %v: %w", rect, err)
	}
	return img, nil
}
