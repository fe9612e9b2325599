package turingprobe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGenerator calls the OpenAI chat completions API.
// Implements TextGenerator.
type OpenAIGenerator struct {
	apiKey     string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	client     openai.Client
}

// OpenAIOption configures an OpenAIGenerator.
type OpenAIOption func(*OpenAIGenerator)

// WithOpenAIBaseURL sets the API base URL (default: https://api.openai.com/v1).
// Useful for Azure OpenAI, proxies, or compatible APIs.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(g *OpenAIGenerator) { g.baseURL = url }
}

// WithOpenAITimeout sets the per-request timeout (default: 30s).
func WithOpenAITimeout(d time.Duration) OpenAIOption {
	return func(g *OpenAIGenerator) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithOpenAIMaxRetries sets how many times the SDK itself retries a request
// (default: 0, the generation loop owns retries).
func WithOpenAIMaxRetries(n int) OpenAIOption {
	return func(g *OpenAIGenerator) { g.maxRetries = n }
}

// NewOpenAIGenerator creates a generator backed by the OpenAI SDK.
func NewOpenAIGenerator(apiKey string, opts ...OpenAIOption) *OpenAIGenerator {
	g := &OpenAIGenerator{
		apiKey:  apiKey,
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(g.timeout),
		option.WithMaxRetries(g.maxRetries),
	}
	if g.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(g.baseURL))
	}
	g.client = openai.NewClient(reqOpts...)
	return g
}

// Generate sends one chat completion request and returns the trimmed reply.
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("no API key")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai chat: empty response")
	}
	return text, nil
}
