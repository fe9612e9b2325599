package turingprobe

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TextGenerator produces a completion for a single instruction.
// Built-in: OpenAIGenerator, AnthropicGenerator, GeminiGenerator, OllamaGenerator.
// Every error is treated as retryable by the generation and judging loops.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// TextGeneratorFunc adapts a function to TextGenerator.
type TextGeneratorFunc func(ctx context.Context, req GenerationRequest) (string, error)

// Generate calls f.
func (f TextGeneratorFunc) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	return f(ctx, req)
}

// Provider names accepted by NewTextGenerator.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// ProviderConfig holds credentials and endpoints for all providers.
type ProviderConfig struct {
	OpenAIAPIKey     string        `yaml:"-"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	AnthropicAPIKey  string        `yaml:"-"`
	AnthropicBaseURL string        `yaml:"anthropic_base_url"`
	GeminiAPIKey     string        `yaml:"-"`
	GeminiBaseURL    string        `yaml:"gemini_base_url"`
	OllamaHost       string        `yaml:"ollama_host"`
	Timeout          time.Duration `yaml:"timeout"`
}

// NewTextGenerator constructs the adapter for the named provider.
func NewTextGenerator(ctx context.Context, provider string, pc ProviderConfig) (TextGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI, "":
		opts := []OpenAIOption{WithOpenAITimeout(pc.Timeout)}
		if pc.OpenAIBaseURL != "" {
			opts = append(opts, WithOpenAIBaseURL(pc.OpenAIBaseURL))
		}
		return NewOpenAIGenerator(pc.OpenAIAPIKey, opts...), nil
	case ProviderAnthropic:
		opts := []AnthropicOption{WithAnthropicTimeout(pc.Timeout)}
		if pc.AnthropicBaseURL != "" {
			opts = append(opts, WithAnthropicBaseURL(pc.AnthropicBaseURL))
		}
		return NewAnthropicGenerator(pc.AnthropicAPIKey, opts...), nil
	case ProviderGemini:
		opts := []GeminiOption{WithGeminiTimeout(pc.Timeout)}
		if pc.GeminiBaseURL != "" {
			opts = append(opts, WithGeminiBaseURL(pc.GeminiBaseURL))
		}
		return NewGeminiGenerator(ctx, pc.GeminiAPIKey, opts...)
	case ProviderOllama:
		opts := []OllamaOption{WithOllamaTimeout(pc.Timeout)}
		if pc.OllamaHost != "" {
			opts = append(opts, WithOllamaHost(pc.OllamaHost))
		}
		return NewOllamaGenerator(opts...), nil
	default:
		return nil, fmt.Errorf("turingprobe: unsupported provider %q", provider)
	}
}
