package gateway

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func newHubServer(t *testing.T) (*Hub, string) {
	hub := NewHub(testLogger())
	e := echo.New()
	e.GET("/v1/events", hub.HandleEvents)
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/events"
}

func dialEvents(t *testing.T, url string) *websocket.Conn {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	return ws
}

func waitForConns(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections, got %d", n, hub.Count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readEvent(t *testing.T, ws *websocket.Conn) Event {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return ev
}

func TestHub_BroadcastsListenerEvents(t *testing.T) {
	hub, url := newHubServer(t)
	first := dialEvents(t, url)
	second := dialEvents(t, url)
	waitForConns(t, hub, 2)

	hub.OnScreenContextUpdated("Hello World")
	hub.OnAnswerReceived("Bonjour")

	for _, ws := range []*websocket.Conn{first, second} {
		ev := readEvent(t, ws)
		if ev.Type != EventScreenContext || ev.Text != "Hello World" {
			t.Errorf("unexpected first event %+v", ev)
		}
		ev = readEvent(t, ws)
		if ev.Type != EventAnswer || ev.Text != "Bonjour" {
			t.Errorf("unexpected second event %+v", ev)
		}
	}
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, url := newHubServer(t)
	ws := dialEvents(t, url)
	waitForConns(t, hub, 1)

	ws.Close()
	waitForConns(t, hub, 0)
}

func TestHub_Close(t *testing.T) {
	hub, url := newHubServer(t)
	ws := dialEvents(t, url)
	waitForConns(t, hub, 1)

	hub.Close()
	if hub.Count() != 0 {
		t.Errorf("expected no connections after close, got %d", hub.Count())
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Error("expected the stream to be closed")
	}

	late := dialEvents(t, url)
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Error("expected connections after close to be refused")
	}
}

func TestHub_BroadcastWithoutConnections(t *testing.T) {
	hub := NewHub(nil)
	hub.OnAnswerReceived("nobody listening")
	if hub.Count() != 0 {
		t.Error("expected no connections")
	}
}
