package turingprobe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator calls the Anthropic messages API.
// Implements TextGenerator.
type AnthropicGenerator struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	client     anthropic.Client
}

// AnthropicOption configures an AnthropicGenerator.
type AnthropicOption func(*AnthropicGenerator)

// WithAnthropicBaseURL sets the API base URL (default: https://api.anthropic.com).
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(g *AnthropicGenerator) { g.baseURL = url }
}

// WithAnthropicTimeout sets the per-request timeout (default: 30s).
func WithAnthropicTimeout(d time.Duration) AnthropicOption {
	return func(g *AnthropicGenerator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithAnthropicMaxRetries sets the SDK's own retry count (default: 0).
func WithAnthropicMaxRetries(n int) AnthropicOption {
	return func(g *AnthropicGenerator) { g.maxRetries = n }
}

// NewAnthropicGenerator creates a generator backed by the Anthropic SDK.
func NewAnthropicGenerator(apiKey string, opts ...AnthropicOption) *AnthropicGenerator {
	g := &AnthropicGenerator{
		apiKey:  apiKey,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}

	reqOpts := []aoption.RequestOption{
		aoption.WithAPIKey(apiKey),
		aoption.WithRequestTimeout(g.timeout),
		aoption.WithMaxRetries(g.maxRetries),
	}
	if g.baseURL != "" {
		reqOpts = append(reqOpts, aoption.WithBaseURL(g.baseURL))
	}
	g.client = anthropic.NewClient(reqOpts...)
	return g
}

// Generate sends one message request and returns the concatenated text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("no API key")
	}

	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 256
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(req.Temperature),
		TopP:        anthropic.Float(req.TopP),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("anthropic messages: empty response")
	}
	return text, nil
}
