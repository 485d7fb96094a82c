package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrLoopStarted = errors.New("capture loop already started")
	ErrLoopStopped = errors.New("capture loop stopped")
)

type FrameHandler func(*Frame)

// Loop drives a Capturer at a fixed pause between attempts. Once Stop returns
// no further frames are delivered; onFrame runs under the loop lock and must
// not call Stop.
type Loop struct {
	src      Capturer
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLoop(src Capturer, interval time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		src:      src,
		interval: interval,
		logger:   logger.With("component", "capture-loop"),
		done:     make(chan struct{}),
	}
}

func (l *Loop) Start(onFrame FrameHandler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return ErrLoopStopped
	}
	if l.started {
		return ErrLoopStarted
	}
	l.started = true

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	l.logger.Info("capture started", "interval", l.interval)
	go l.run(ctx, onFrame)
	return nil
}

func (l *Loop) run(ctx context.Context, onFrame FrameHandler) {
	defer close(l.done)

	timer := time.NewTimer(l.interval)
	timer.Stop()
	defer timer.Stop()

	failures := 0
	for {
		frame, err := l.src.Capture(ctx)
		if err != nil {
			failures++
			if failures == 1 {
				l.logger.Warn("capture failed", "error", err)
			} else {
				l.logger.Debug("capture failed", "error", err, "consecutive", failures)
			}
		} else {
			if failures > 0 {
				l.logger.Info("capture recovered", "after_failures", failures)
			}
			failures = 0
			if !l.deliver(frame, onFrame) {
				return
			}
		}

		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (l *Loop) deliver(frame *Frame, onFrame FrameHandler) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return false
	}
	onFrame(frame)
	return true
}

// Stop is idempotent. A capture already in progress finishes but its frame
// is dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return
	}
	l.stopped = true
	if l.cancel == nil {
		close(l.done)
		return
	}
	l.cancel()
	l.logger.Info("capture stopped")
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started && !l.stopped
}

// Done is closed once the loop goroutine has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
