package ocr

import (
	"context"
	"time"

	"github.com/eleven-am/screen-assistant/internal/capture"
)

type Extractor interface {
	Extract(ctx context.Context, frame *capture.Frame) string
}

type Config struct {
	Binary string
	Lang   string
	Scale  float64
}

type ScreenContext struct {
	Text        string    `json:"text"`
	FrameSeq    uint64    `json:"frame_seq"`
	CompletedAt time.Time `json:"completed_at"`
}

func (c ScreenContext) Available() bool {
	return !c.CompletedAt.IsZero()
}
