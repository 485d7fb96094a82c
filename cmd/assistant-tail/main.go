// Command assistant-tail follows the event stream of a running assistant and
// prints screen context updates and answers as they arrive.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

type event struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func main() {
	eventsURL := os.Getenv("EVENTS_URL")
	if eventsURL == "" {
		eventsURL = "ws://127.0.0.1:8765/v1/events"
	}
	showContext := os.Getenv("TAIL_CONTEXT") != "false"

	conn, resp, err := websocket.DefaultDialer.Dial(eventsURL, nil)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("[TAIL] Dial failed: %v, status=%d, body=%s\n", err, resp.StatusCode, string(body))
		}
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	fmt.Printf("[TAIL] Connected to %s\n", eventsURL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		os.Exit(0)
	}()

	dim := color.RGB(150, 150, 150)
	answer := color.New(color.FgGreen)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			fmt.Printf("[TAIL] Read error: %v\n", err)
			return
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			fmt.Printf("[TAIL] Unmarshal error: %v\n", err)
			continue
		}

		stamp := ev.Timestamp.Local().Format("15:04:05")
		switch ev.Type {
		case "screen_context":
			if showContext {
				dim.Printf("%s screen  %s\n", stamp, strings.Join(strings.Fields(ev.Text), " "))
			}
		case "answer":
			answer.Printf("%s answer  %s\n", stamp, ev.Text)
		default:
			fmt.Printf("[TAIL] Ignoring event type: %s\n", ev.Type)
		}
	}
}
