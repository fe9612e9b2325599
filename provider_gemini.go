package turingprobe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini GenerateContent API through the genai SDK.
// Implements TextGenerator.
type GeminiGenerator struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *genai.Client
}

// GeminiOption configures a GeminiGenerator.
type GeminiOption func(*GeminiGenerator)

// WithGeminiBaseURL overrides the API endpoint (tests, proxies).
func WithGeminiBaseURL(url string) GeminiOption {
	return func(g *GeminiGenerator) { g.baseURL = url }
}

// WithGeminiTimeout sets the per-request timeout (default: 30s).
func WithGeminiTimeout(d time.Duration) GeminiOption {
	return func(g *GeminiGenerator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// NewGeminiGenerator creates a generator for the Gemini API.
// An empty apiKey is allowed; Generate then fails with "no API key".
func NewGeminiGenerator(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiGenerator, error) {
	g := &GeminiGenerator{
		apiKey:  apiKey,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	if apiKey == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  &http.Client{Timeout: g.timeout},
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate sends one GenerateContent request and returns the trimmed text.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("no API key")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
		TopP:        genai.Ptr(float32(req.TopP)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return text, nil
}
