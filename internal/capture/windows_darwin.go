//go:build darwin

package capture

import (
	"context"
	"fmt"
	"os/exec"
)

const windowListScript = `ObjC.import('CoreGraphics');
var info = ObjC.castRefToObject($.CGWindowListCopyWindowInfo($.kCGWindowListOptionOnScreenOnly | $.kCGWindowListExcludeDesktopElements, $.kCGNullWindowID));
var list = ObjC.deepUnwrap(info) || [];
JSON.stringify(list.map(function (w) {
  return {id: w.kCGWindowNumber, title: w.kCGWindowName || "", owner: w.kCGWindowOwnerName || "", layer: w.kCGWindowLayer || 0, bounds: w.kCGWindowBounds};
}));`

type quartzWindows struct{}

func NewWindowLister() WindowLister {
	return quartzWindows{}
}

func (quartzWindows) Supported() bool { return true }

func (quartzWindows) ListWindows(ctx context.Context) ([]Window, error) {
	out, err := exec.CommandContext(ctx, "osascript", "-l", "JavaScript", "-e", windowListScript).Output()
	if err != nil {
		return nil, fmt.Errorf("enumerate windows: %w", err)
	}
	return parseWindowList(out)
}
