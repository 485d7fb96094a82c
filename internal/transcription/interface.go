package transcription

import (
	"context"
	"io"
	"time"
)

// Microphone yields raw signed 16-bit little-endian mono PCM.
type Microphone interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// SpeechRecognizer returns empty text for silence and for any failure.
type SpeechRecognizer interface {
	RecognizeOnce(ctx context.Context, timeout, phraseLimit time.Duration) string
}
