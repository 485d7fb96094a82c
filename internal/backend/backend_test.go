package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
)

const unreachable = "http://127.0.0.1:1"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"openai", KindOpenAI},
		{"remote-chat", KindOpenAI},
		{"Gemini", KindGemini},
		{"gemini-pro", KindGemini},
		{"local-inference", KindOllama},
		{" ollama ", KindOllama},
		{"claude", Kind("claude")},
	}
	for _, tt := range tests {
		if got := ParseKind(tt.in); got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBackend_Unsupported(t *testing.T) {
	for _, kind := range []Kind{"claude", ""} {
		b := New(Config{Kind: kind}, testLogger())
		if got := b.Ask(context.Background(), "hi", ""); got != UnsupportedMarker {
			t.Errorf("kind %q: expected unsupported marker, got %q", kind, got)
		}
		if b.Name() != UnsupportedName {
			t.Errorf("kind %q: expected name %q, got %q", kind, UnsupportedName, b.Name())
		}
		if err := b.Close(); err != nil {
			t.Errorf("kind %q: unexpected close error: %v", kind, err)
		}
	}
}

func TestGemini_ReusesClient(t *testing.T) {
	c := newGemini(Config{GeminiKey: "key", GeminiEndpoint: unreachable})
	ctx, cancel := context.WithCancel(context.Background())

	first, err := c.genaiClient(ctx)
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	cancel()
	second, err := c.genaiClient(context.Background())
	if err != nil {
		t.Fatalf("second client: %v", err)
	}
	if first != second {
		t.Error("expected the client to be reused across calls")
	}

	if err := c.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
	if c.client != nil {
		t.Error("expected client released after Close")
	}
	if err := c.Close(); err != nil {
		t.Errorf("expected second Close to be a no-op, got %v", err)
	}
}

func TestBackend_UnreachableIsTagged(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"OpenAI", Config{Kind: KindOpenAI, OpenAIKey: "sk-test", OpenAIBaseURL: unreachable + "/v1/"}},
		{"Gemini", Config{Kind: KindGemini, GeminiKey: "key", GeminiEndpoint: unreachable}},
		{"Ollama", Config{Kind: KindOllama, OllamaURL: unreachable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			b := New(tt.cfg, testLogger())
			got := b.Ask(ctx, "prompt", "")
			if !strings.Contains(got, tt.name) {
				t.Errorf("expected answer to name %s, got %q", tt.name, got)
			}
			if !strings.HasPrefix(got, "["+tt.name+" error]: ") {
				t.Errorf("expected tagged error, got %q", got)
			}
		})
	}
}

func TestOpenAI_Ask(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Bonjour le monde"}}]}`))
	}))
	defer server.Close()

	b := New(Config{Kind: KindOpenAI, OpenAIKey: "sk-test", OpenAIBaseURL: server.URL + "/"}, testLogger())
	answer := b.Ask(context.Background(), "Translate this", "You are terse.")

	if answer != "Bonjour le monde" {
		t.Errorf("unexpected answer %q", answer)
	}
	if got.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %s", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "Translate this" {
		t.Errorf("unexpected messages %+v", got.Messages)
	}
}

func TestOpenAI_NoSystemMessageWithoutContext(t *testing.T) {
	var count int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []json.RawMessage `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		count = len(body.Messages)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer server.Close()

	b := New(Config{Kind: KindOpenAI, OpenAIKey: "k", OpenAIBaseURL: server.URL + "/"}, testLogger())
	b.Ask(context.Background(), "hi", "  ")
	if count != 1 {
		t.Errorf("expected only the user message, got %d", count)
	}
}

func TestOpenAI_HTTPErrorIsTagged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	b := New(Config{Kind: KindOpenAI, OpenAIKey: "k", OpenAIBaseURL: server.URL + "/"}, testLogger())
	if got := b.Ask(context.Background(), "hi", ""); !strings.HasPrefix(got, "[OpenAI error]: ") {
		t.Errorf("expected tagged error, got %q", got)
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`))
	}))
	defer server.Close()

	b := New(Config{Kind: KindOpenAI, OpenAIKey: "k", OpenAIBaseURL: server.URL + "/"}, testLogger())
	if got := b.Ask(context.Background(), "hi", ""); !strings.Contains(got, "no choices") {
		t.Errorf("expected no choices error, got %q", got)
	}
}

func TestOllama_Ask(t *testing.T) {
	var req ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(ollamaResponse{Response: "  Bonjour le monde\n", Done: true})
	}))
	defer server.Close()

	b := New(Config{Kind: KindOllama, OllamaURL: server.URL + "/"}, testLogger())
	answer := b.Ask(context.Background(), "Translate this", "be brief")

	if answer != "Bonjour le monde" {
		t.Errorf("unexpected answer %q", answer)
	}
	if req.Model != "llama2" || req.Stream || req.System != "be brief" || req.Prompt != "Translate this" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestOllama_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			want: "status 404",
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("{not json"))
			},
			want: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			b := New(Config{Kind: KindOllama, OllamaURL: server.URL}, testLogger())
			got := b.Ask(context.Background(), "p", "")
			if !strings.HasPrefix(got, "[Ollama error]: ") || !strings.Contains(got, tt.want) {
				t.Errorf("expected tagged %q error, got %q", tt.want, got)
			}
		})
	}
}

func TestFirstCandidateText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Bonjour "), genai.Text("le monde")}},
		}},
	}
	got, err := firstCandidateText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Bonjour le monde" {
		t.Errorf("unexpected text %q", got)
	}

	if _, err := firstCandidateText(&genai.GenerateContentResponse{}); err == nil {
		t.Error("expected error for empty candidates")
	}
	if _, err := firstCandidateText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}); err == nil {
		t.Error("expected error for candidate without content")
	}
}

func TestBackend_Names(t *testing.T) {
	for kind, name := range map[Kind]string{KindOpenAI: "OpenAI", KindGemini: "Gemini", KindOllama: "Ollama"} {
		if got := New(Config{Kind: kind}, nil).Name(); got != name {
			t.Errorf("kind %s: expected %s, got %s", kind, name, got)
		}
	}
}
