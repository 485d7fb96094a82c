package transcription

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/screen-assistant/internal/audio"
)

// listenSlack is added to calibration, timeout and phrase limit to bound how
// long one recognition may read from the microphone.
const listenSlack = 2 * time.Second

type Recognizer struct {
	mic         Microphone
	transcriber Transcriber
	cfg         Config
	logger      *slog.Logger
}

func NewRecognizer(cfg Config, mic Microphone, transcriber Transcriber, logger *slog.Logger) *Recognizer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{
		mic:         mic,
		transcriber: transcriber,
		cfg:         cfg,
		logger:      logger.With("component", "speech-recognizer"),
	}
}

func (r *Recognizer) Defaults() (timeout, phraseLimit time.Duration) {
	return r.cfg.Timeout, r.cfg.PhraseLimit
}

// RecognizeOnce listens for a single phrase. Silence, inconclusive
// recognition and service failures all yield empty text.
func (r *Recognizer) RecognizeOnce(ctx context.Context, timeout, phraseLimit time.Duration) string {
	if timeout <= 0 {
		timeout = r.cfg.Timeout
	}
	if phraseLimit <= 0 {
		phraseLimit = r.cfg.PhraseLimit
	}

	stream, err := r.mic.Open(ctx)
	if err != nil {
		r.logger.Error("open microphone failed", "error", err)
		return ""
	}
	closeStream := sync.OnceFunc(func() { stream.Close() })
	defer closeStream()

	// A recorder that stops producing PCM is closed once the listening budget
	// passes or ctx is cancelled, which unblocks the pending read.
	watchdog := time.AfterFunc(r.cfg.Calibration+timeout+phraseLimit+listenSlack, closeStream)
	defer watchdog.Stop()
	stopOnCancel := context.AfterFunc(ctx, closeStream)
	defer stopOnCancel()

	det := newPhraseDetector(r.cfg,
		audio.Samples(timeout, r.cfg.SampleRate),
		audio.Samples(phraseLimit, r.cfg.SampleRate),
	)
	if err := det.calibrate(stream); err != nil {
		r.logger.Warn("ambient calibration failed", "error", err)
		return ""
	}

	phrase, err := det.capture(stream)
	if err != nil {
		if errors.Is(err, errNoSpeech) {
			r.logger.Debug("no speech detected", "timeout", timeout)
		} else {
			r.logger.Warn("listening failed", "error", err)
		}
		return ""
	}
	closeStream()

	r.logger.Debug("phrase captured",
		"duration", audio.Duration(len(phrase), r.cfg.SampleRate),
		"threshold", det.threshold,
	)

	wav := audio.EncodeWAV(audio.Int16ToPCMBytes(phrase), r.cfg.SampleRate)
	text, err := r.transcriber.Transcribe(ctx, wav)
	if err != nil {
		r.logger.Error("speech recognition service failed", "error", err)
		return ""
	}
	return strings.TrimSpace(text)
}
