package gateway

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans coordinator results out to every connected event stream.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*eventConn]struct{}
	closed bool
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		conns:  make(map[*eventConn]struct{}),
		logger: logger.With("component", "event_hub"),
	}
}

func (h *Hub) OnScreenContextUpdated(text string) {
	h.Broadcast(&Event{Type: EventScreenContext, Text: text, Timestamp: time.Now()})
}

func (h *Hub) OnAnswerReceived(text string) {
	h.Broadcast(&Event{Type: EventAnswer, Text: text, Timestamp: time.Now()})
}

func (h *Hub) Broadcast(ev *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.conns {
		conn.Send(ev)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) register(conn *eventConn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conns[conn] = struct{}{}
	return true
}

func (h *Hub) unregister(conn *eventConn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// Close disconnects every stream and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*eventConn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*eventConn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}

func (h *Hub) HandleEvents(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	conn := newEventConn(ws, h.logger)
	if !h.register(conn) {
		conn.Close()
		return nil
	}
	h.logger.Info("event stream connected", "remote", c.RealIP())

	go conn.writePump()
	conn.readPump()

	h.unregister(conn)
	h.logger.Info("event stream disconnected", "remote", c.RealIP())
	return nil
}
