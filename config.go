package turingprobe

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all run parameters. Zero-valued fields are filled by ApplyDefaults.
type Config struct {
	PromptsPath string `yaml:"prompts_path"` // default: data/prompts.txt
	DataDir     string `yaml:"data_dir"`     // default: data
	FiguresDir  string `yaml:"figures_dir"`  // default: figures
	DatasetFile string `yaml:"dataset_file"` // default: labeled_dataset.csv (inside DataDir)

	Generation GenerationConfig `yaml:"generation"`
	Judge      JudgeConfig      `yaml:"judge"`
	Providers  ProviderConfig   `yaml:"providers"`

	Models  map[string]ModelSpec `yaml:"models"`  // selector -> backing model
	Sources []LabeledSource      `yaml:"sources"` // inputs of the label stage
	Topics  TopicMap             `yaml:"topics"`  // question -> topic bucket
}

// GenerationConfig controls the diverse-set generator.
type GenerationConfig struct {
	TargetCount         int           `yaml:"target_count"`         // default 5; 0 means unset
	MaxAttempts         int           `yaml:"max_attempts"`         // default 30; 0 means unset
	SimilarityThreshold *float64      `yaml:"similarity_threshold"` // default 0.8; an explicit 0 is kept
	Temperature         float64       `yaml:"temperature"`          // default 0.85
	TopP                float64       `yaml:"top_p"`                // default 0.9
	MaxTokens           int           `yaml:"max_tokens"`           // default 100
	CallPause           time.Duration `yaml:"call_pause"`           // default 1s
	ErrorPause          time.Duration `yaml:"error_pause"`          // default 5s
	Seed                uint64        `yaml:"seed"`                 // 0 = time-based, see NewSampler
}

// Threshold returns the similarity gate's rejection threshold, falling back
// to DefaultSimilarityThreshold when none is set.
func (g GenerationConfig) Threshold() float64 {
	if g.SimilarityThreshold == nil {
		return DefaultSimilarityThreshold
	}
	return *g.SimilarityThreshold
}

// JudgeConfig controls the judging run.
type JudgeConfig struct {
	Temperature float64       `yaml:"temperature"` // default 0.3
	TopP        float64       `yaml:"top_p"`       // default 1.0
	MaxTokens   int           `yaml:"max_tokens"`  // default 150
	RowPause    time.Duration `yaml:"row_pause"`   // default 1s
	ShuffleSeed *int64        `yaml:"shuffle_seed"`
	NoShuffle   bool          `yaml:"no_shuffle"`
}

// ModelSpec names the provider and backing model behind a CLI selector.
type ModelSpec struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// DefaultShuffleSeed is the row-order seed used when none is configured.
const DefaultShuffleSeed int64 = 42

// DefaultModels maps the study's selectors to backing models.
func DefaultModels() map[string]ModelSpec {
	return map[string]ModelSpec{
		"gpt-4":   {Provider: ProviderOpenAI, Model: "gpt-4"},
		"gpt-3.5": {Provider: ProviderOpenAI, Model: "gpt-3.5-turbo"},
	}
}

// DefaultSources lists the label-stage inputs: both generation outputs and
// the human baseline.
func DefaultSources() []LabeledSource {
	return []LabeledSource{
		{Label: "gpt4", File: "gpt4_responses_styled.csv"},
		{Label: "gpt3.5", File: "gpt35_responses_styled.csv"},
		{Label: SourceHuman, File: "human_responses.csv"},
	}
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.PromptsPath == "" {
		c.PromptsPath = "data/prompts.txt"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.FiguresDir == "" {
		c.FiguresDir = "figures"
	}
	if c.DatasetFile == "" {
		c.DatasetFile = "labeled_dataset.csv"
	}
	c.Generation.applyDefaults()
	c.Judge.applyDefaults()
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 30 * time.Second
	}
	if c.Models == nil {
		c.Models = make(map[string]ModelSpec)
	}
	for selector, spec := range DefaultModels() {
		if _, ok := c.Models[selector]; !ok {
			c.Models[selector] = spec
		}
	}
	if c.Sources == nil {
		c.Sources = DefaultSources()
	}
	if c.Topics == nil {
		c.Topics = DefaultTopics()
	}
}

func (g *GenerationConfig) applyDefaults() {
	if g.TargetCount == 0 {
		g.TargetCount = 5
	}
	if g.MaxAttempts == 0 {
		g.MaxAttempts = 30
	}
	if g.SimilarityThreshold == nil {
		threshold := DefaultSimilarityThreshold
		g.SimilarityThreshold = &threshold
	}
	if g.Temperature == 0 {
		g.Temperature = 0.85
	}
	if g.TopP == 0 {
		g.TopP = 0.9
	}
	if g.MaxTokens == 0 {
		g.MaxTokens = 100
	}
	if g.CallPause == 0 {
		g.CallPause = time.Second
	}
	if g.ErrorPause == 0 {
		g.ErrorPause = 5 * time.Second
	}
}

func (j *JudgeConfig) applyDefaults() {
	if j.Temperature == 0 {
		j.Temperature = 0.3
	}
	if j.TopP == 0 {
		j.TopP = 1.0
	}
	if j.MaxTokens == 0 {
		j.MaxTokens = 150
	}
	if j.RowPause == 0 {
		j.RowPause = time.Second
	}
	if j.ShuffleSeed == nil && !j.NoShuffle {
		seed := DefaultShuffleSeed
		j.ShuffleSeed = &seed
	}
}

// LoadConfig reads an optional YAML file, overlays environment variables and
// applies defaults. An empty path or a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to defaults
		case err != nil:
			return Config{}, fmt.Errorf("turingprobe: read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &c); err != nil {
				return Config{}, fmt.Errorf("turingprobe: parse config %s: %w", path, err)
			}
		}
	}
	c.applyEnv(os.Getenv)
	c.ApplyDefaults()
	return c, nil
}

// applyEnv overlays credentials and a few tunables from the environment.
// API keys are only ever read from the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	c.Providers.OpenAIAPIKey = getenv("OPENAI_API_KEY")
	c.Providers.AnthropicAPIKey = getenv("ANTHROPIC_API_KEY")
	c.Providers.GeminiAPIKey = getenv("GEMINI_API_KEY")

	if v := getenv("OPENAI_BASE_URL"); v != "" {
		c.Providers.OpenAIBaseURL = v
	}
	if v := getenv("OLLAMA_HOST"); v != "" {
		c.Providers.OllamaHost = v
	}
	if v := getenv("TURINGPROBE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("TURINGPROBE_PROMPTS"); v != "" {
		c.PromptsPath = v
	}
	if v := getenv("TURINGPROBE_TARGET_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.TargetCount = n
		}
	}
	if v := getenv("TURINGPROBE_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Generation.MaxAttempts = n
		}
	}
	if v := getenv("TURINGPROBE_SIMILARITY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Generation.SimilarityThreshold = &f
		}
	}
}

// ResolveModel maps a CLI selector to a provider and backing model.
//
// Lookup order: configured alias, then "provider:model", then the selector
// itself as an OpenAI model name.
func (c *Config) ResolveModel(selector string) (ModelSpec, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return ModelSpec{}, fmt.Errorf("turingprobe: empty model selector")
	}
	if spec, ok := c.Models[selector]; ok {
		if spec.Provider == "" {
			spec.Provider = ProviderOpenAI
		}
		if spec.Model == "" {
			spec.Model = selector
		}
		return spec, nil
	}
	if provider, model, ok := strings.Cut(selector, ":"); ok {
		switch strings.ToLower(provider) {
		case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama:
			if model == "" {
				return ModelSpec{}, fmt.Errorf("turingprobe: selector %q has no model", selector)
			}
			return ModelSpec{Provider: strings.ToLower(provider), Model: model}, nil
		}
	}
	return ModelSpec{Provider: ProviderOpenAI, Model: selector}, nil
}
