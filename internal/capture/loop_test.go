package capture

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubCapturer struct {
	seq   Sequencer
	calls atomic.Int32
	fail  func(n int32) bool
}

func (s *stubCapturer) Capture(context.Context) (*Frame, error) {
	n := s.calls.Add(1)
	if s.fail != nil && s.fail(n) {
		return nil, errors.New("capture failed")
	}
	return &Frame{Seq: s.seq.Next(), Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), CapturedAt: time.Now()}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoop_DeliversFrames(t *testing.T) {
	loop := NewLoop(&stubCapturer{}, 5*time.Millisecond, testLogger())

	frames := make(chan *Frame, 16)
	if err := loop.Start(func(f *Frame) {
		select {
		case frames <- f:
		default:
		}
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer loop.Stop()

	for i := 0; i < 3; i++ {
		select {
		case <-frames:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for frame %d", i)
		}
	}
	if !loop.Running() {
		t.Error("expected loop to report running")
	}
}

func TestLoop_NoDeliveryAfterStop(t *testing.T) {
	loop := NewLoop(&stubCapturer{}, time.Millisecond, testLogger())

	var mu sync.Mutex
	stopped := false
	late := 0
	delivered := make(chan struct{}, 1)

	loop.Start(func(*Frame) {
		mu.Lock()
		if stopped {
			late++
		}
		mu.Unlock()
		select {
		case delivered <- struct{}{}:
		default:
		}
	})

	<-delivered
	loop.Stop()
	mu.Lock()
	stopped = true
	mu.Unlock()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit")
	}
	time.Sleep(10 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if late != 0 {
		t.Errorf("expected no deliveries after Stop, got %d", late)
	}
	if loop.Running() {
		t.Error("expected loop to report stopped")
	}
}

func TestLoop_StopIdempotent(t *testing.T) {
	loop := NewLoop(&stubCapturer{}, time.Millisecond, testLogger())
	loop.Start(func(*Frame) {})
	loop.Stop()
	loop.Stop()

	if err := loop.Start(func(*Frame) {}); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("expected ErrLoopStopped, got %v", err)
	}
}

func TestLoop_StopBeforeStart(t *testing.T) {
	loop := NewLoop(&stubCapturer{}, time.Millisecond, testLogger())
	loop.Stop()
	select {
	case <-loop.Done():
	default:
		t.Error("expected Done to be closed")
	}
}

func TestLoop_DoubleStart(t *testing.T) {
	loop := NewLoop(&stubCapturer{}, time.Millisecond, testLogger())
	defer loop.Stop()
	loop.Start(func(*Frame) {})
	if err := loop.Start(func(*Frame) {}); !errors.Is(err, ErrLoopStarted) {
		t.Errorf("expected ErrLoopStarted, got %v", err)
	}
}

func TestLoop_FailuresSkipTick(t *testing.T) {
	src := &stubCapturer{fail: func(n int32) bool { return n%2 == 1 }}
	loop := NewLoop(src, time.Millisecond, testLogger())

	got := make(chan uint64, 8)
	loop.Start(func(f *Frame) {
		select {
		case got <- f.Seq:
		default:
		}
	})
	defer loop.Stop()

	for i := 0; i < 2; i++ {
		select {
		case <-got:
		case <-time.After(time.Second):
			t.Fatal("loop stopped delivering after failures")
		}
	}
	if src.calls.Load() < 3 {
		t.Errorf("expected failed attempts to be retried, got %d calls", src.calls.Load())
	}
}
