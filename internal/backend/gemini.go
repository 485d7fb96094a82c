package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiClient creates its genai client on first use and keeps it for the
// lifetime of the backend.
type geminiClient struct {
	apiKey   string
	model    string
	endpoint string

	mu     sync.Mutex
	client *genai.Client
}

func newGemini(cfg Config) *geminiClient {
	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-pro"
	}
	return &geminiClient{
		apiKey:   cfg.GeminiKey,
		model:    model,
		endpoint: cfg.GeminiEndpoint,
	}
}

func (c *geminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(c.apiKey)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	cl, err := genai.NewClient(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	c.client = cl
	return cl, nil
}

func (c *geminiClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client = nil
	return err
}

func (c *geminiClient) complete(ctx context.Context, prompt, system string) (string, error) {
	cl, err := c.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	m := cl.GenerativeModel(c.model)
	if strings.TrimSpace(system) != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return firstCandidateText(resp)
}

func firstCandidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("response has no candidates")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return "", fmt.Errorf("candidate has no content")
	}

	var b strings.Builder
	for _, p := range cand.Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("candidate has no text")
	}
	return strings.TrimSpace(b.String()), nil
}
