package turingprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaGenerator generates text via a local Ollama server.
// Implements TextGenerator. No API key required.
type OllamaGenerator struct {
	host   string
	client *http.Client
}

// OllamaOption configures an OllamaGenerator.
type OllamaOption func(*OllamaGenerator)

// WithOllamaHost sets the Ollama server URL (default: http://localhost:11434).
func WithOllamaHost(host string) OllamaOption {
	return func(g *OllamaGenerator) { g.host = strings.TrimRight(host, "/") }
}

// WithOllamaTimeout sets the HTTP timeout (default: 60s, local models are slow).
func WithOllamaTimeout(d time.Duration) OllamaOption {
	return func(g *OllamaGenerator) {
		if d > 0 {
			g.client.Timeout = d
		}
	}
}

// NewOllamaGenerator creates a generator for a local Ollama instance.
// The model named in each request must already be pulled.
func NewOllamaGenerator(opts ...OllamaOption) *OllamaGenerator {
	g := &OllamaGenerator{
		host:   "http://localhost:11434",
		client: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate calls /api/generate without streaming.
func (g *OllamaGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	url := g.host + "/api/generate"

	reqBody := ollamaGenerateRequest{
		Model:  req.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: ollamaOptions{
			Temperature: req.Temperature,
			TopP:        req.TopP,
			NumPredict:  req.MaxTokens,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama generate %d: %s", resp.StatusCode, string(body[:min(len(body), 200)]))
	}

	var ollamaResp ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	text := strings.TrimSpace(ollamaResp.Response)
	if text == "" {
		return "", fmt.Errorf("empty response returned")
	}
	return text, nil
}

// --- Ollama Generate API types ---

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
