package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/eleven-am/screen-assistant/internal/capture"
	"golang.org/x/image/draw"
)

const errorTag = "[OCR error]"

type runFunc func(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error)

type Tesseract struct {
	binary string
	lang   string
	scale  float64
	run    runFunc
	logger *slog.Logger
}

func NewTesseract(cfg Config, logger *slog.Logger) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "jpn+eng"
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tesseract{
		binary: cfg.Binary,
		lang:   cfg.Lang,
		scale:  cfg.Scale,
		run:    execRun,
		logger: logger.With("component", "ocr"),
	}
}

func execRun(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// Extract never fails: engine errors come back as tagged text.
func (t *Tesseract) Extract(ctx context.Context, frame *capture.Frame) string {
	text, err := t.extract(ctx, frame)
	if err != nil {
		t.logger.Warn("ocr failed", "error", err)
		return fmt.Sprintf("%s: %v", errorTag, err)
	}
	return text
}

func (t *Tesseract) extract(ctx context.Context, frame *capture.Frame) (string, error) {
	if frame == nil || frame.Image == nil {
		return "", fmt.Errorf("no image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepare(frame.Image, t.scale)); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}

	out, err := t.run(ctx, t.binary, []string{"stdin", "stdout", "-l", t.lang}, buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// prepare returns a grayscale copy, optionally upscaled. The source image is
// never written to.
func prepare(src image.Image, scale float64) image.Image {
	b := src.Bounds()
	w := int(float64(b.Dx()) * scale)
	h := int(float64(b.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
