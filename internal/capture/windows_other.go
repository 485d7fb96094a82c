//go:build !darwin

package capture

import (
	"context"
	"fmt"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

type noWindows struct{}

func NewWindowLister() WindowLister {
	return noWindows{}
}

func (noWindows) Supported() bool { return false }

func (noWindows) ListWindows(context.Context) ([]Window, error) {
	return nil, fmt.Errorf("window enumeration: %w", shared.ErrUnsupported)
}
