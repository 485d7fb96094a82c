package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/eleven-am/screen-assistant/internal/capture"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFrame(w, h int) *capture.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	}
	return &capture.Frame{Seq: 1, Image: img}
}

func TestNewTesseract_Defaults(t *testing.T) {
	ts := NewTesseract(Config{}, nil)
	if ts.binary != "tesseract" {
		t.Errorf("expected binary tesseract, got %s", ts.binary)
	}
	if ts.lang != "jpn+eng" {
		t.Errorf("expected lang jpn+eng, got %s", ts.lang)
	}
	if ts.scale != 1 {
		t.Errorf("expected scale 1, got %v", ts.scale)
	}
}

func TestTesseract_Extract(t *testing.T) {
	ts := NewTesseract(Config{Lang: "eng"}, testLogger())

	var gotName string
	var gotArgs []string
	var gotImage image.Image
	ts.run = func(_ context.Context, name string, args []string, stdin []byte) ([]byte, error) {
		gotName = name
		gotArgs = args
		img, err := png.Decode(bytes.NewReader(stdin))
		if err != nil {
			t.Fatalf("stdin is not a png: %v", err)
		}
		gotImage = img
		return []byte("  Hello World\n\n"), nil
	}

	text := ts.Extract(context.Background(), testFrame(40, 20))
	if text != "Hello World" {
		t.Errorf("expected trimmed text, got %q", text)
	}
	if gotName != "tesseract" {
		t.Errorf("expected tesseract binary, got %s", gotName)
	}
	if strings.Join(gotArgs, " ") != "stdin stdout -l eng" {
		t.Errorf("unexpected args %v", gotArgs)
	}
	if gotImage.Bounds().Dx() != 40 || gotImage.Bounds().Dy() != 20 {
		t.Errorf("unexpected image size %v", gotImage.Bounds())
	}
}

func TestTesseract_ExtractFailureIsTagged(t *testing.T) {
	ts := NewTesseract(Config{}, testLogger())
	ts.run = func(context.Context, string, []string, []byte) ([]byte, error) {
		return nil, errors.New("exec: \"tesseract\": executable file not found")
	}

	text := ts.Extract(context.Background(), testFrame(4, 4))
	if !strings.HasPrefix(text, errorTag+":") {
		t.Errorf("expected tagged error, got %q", text)
	}
	if !strings.Contains(text, "executable file not found") {
		t.Errorf("expected cause in text, got %q", text)
	}
}

func TestTesseract_NilFrame(t *testing.T) {
	ts := NewTesseract(Config{}, testLogger())
	if text := ts.Extract(context.Background(), nil); !strings.HasPrefix(text, errorTag) {
		t.Errorf("expected tagged error, got %q", text)
	}
}

func TestPrepare_DoesNotMutateFrame(t *testing.T) {
	frame := testFrame(10, 10)
	before := append([]byte(nil), frame.Image.Pix...)

	out := prepare(frame.Image, 2)
	if out.Bounds().Dx() != 20 || out.Bounds().Dy() != 20 {
		t.Errorf("expected 20x20, got %v", out.Bounds())
	}
	if !bytes.Equal(before, frame.Image.Pix) {
		t.Error("prepare modified the source image")
	}
	if _, ok := out.(*image.Gray); !ok {
		t.Errorf("expected grayscale output, got %T", out)
	}
}
