package assistant

import "sync"

// Listener receives pipeline results. Calls arrive on worker goroutines; the
// presentation layer marshals them onto its own thread.
type Listener interface {
	OnScreenContextUpdated(text string)
	OnAnswerReceived(text string)
}

type ListenerFuncs struct {
	ScreenContext func(text string)
	Answer        func(text string)
}

func (f ListenerFuncs) OnScreenContextUpdated(text string) {
	if f.ScreenContext != nil {
		f.ScreenContext(text)
	}
}

func (f ListenerFuncs) OnAnswerReceived(text string) {
	if f.Answer != nil {
		f.Answer(text)
	}
}

type listeners struct {
	mu   sync.RWMutex
	list []Listener
}

func (l *listeners) add(listener Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list = append(l.list, listener)
}

func (l *listeners) snapshot() []Listener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Listener(nil), l.list...)
}

func (l *listeners) screenContextUpdated(text string) {
	for _, listener := range l.snapshot() {
		listener.OnScreenContextUpdated(text)
	}
}

func (l *listeners) answerReceived(text string) {
	for _, listener := range l.snapshot() {
		listener.OnAnswerReceived(text)
	}
}
