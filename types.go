package turingprobe

// Source labels used across the pipeline.
const (
	SourceHuman = "human"

	GuessHuman   = "human"
	GuessAI      = "ai"
	GuessUnknown = "unknown"
	GuessError   = "error"
)

// ResponseRecord is one row of a response table or labeled dataset.
type ResponseRecord struct {
	Question string
	Response string
	Source   string // "human" or a generation model identifier
}

// JudgmentRecord is one judged row. Source is the ground truth; Guess is the
// judge's verdict after lower-casing and trimming, or "unknown"/"error".
type JudgmentRecord struct {
	Question    string
	Response    string
	Source      string
	Guess       string
	Explanation string
	JudgeModel  string
}

// LabeledSource declares one input file of the labeled dataset.
type LabeledSource struct {
	Label string `yaml:"label"`
	File  string `yaml:"file"`
}

// GenerationRequest is the input to a TextGenerator call.
type GenerationRequest struct {
	Model       string
	System      string // optional system instruction
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
}
