// turingprobe-mcp exposes the turingprobe building blocks as an MCP stdio server.
//
// Environment variables:
//
//	TURINGPROBE_CONFIG  YAML config path (default: ./turingprobe.yaml, optional)
//	OPENAI_API_KEY      and the other provider keys, as for the CLI
//
// Usage:
//
//	go install github.com/goblincore/turingprobe/cmd/turingprobe-mcp
//	turingprobe-mcp
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	turingprobe "github.com/goblincore/turingprobe"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// toolkit carries what the handlers need.
type toolkit struct {
	cfg    turingprobe.Config
	logger *zap.Logger
	newLLM func(ctx context.Context, provider string, pc turingprobe.ProviderConfig) (turingprobe.TextGenerator, error)
}

func main() {
	cfgPath := os.Getenv("TURINGPROBE_CONFIG")
	if cfgPath == "" {
		cfgPath = "turingprobe.yaml"
	}
	cfg, err := turingprobe.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("turingprobe-mcp: %v", err)
	}

	// stdout carries the protocol; the console logger writes to stderr.
	logger, err := turingprobe.NewLogger(false)
	if err != nil {
		log.Fatalf("turingprobe-mcp: %v", err)
	}
	defer logger.Sync()

	tk := &toolkit{cfg: cfg, logger: logger, newLLM: turingprobe.NewTextGenerator}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "turingprobe-mcp",
		Version: "1.0.0",
	}, nil)
	registerTools(server, tk)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("turingprobe-mcp: %v", err)
	}
}

func registerTools(server *mcp.Server, tk *toolkit) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "similarity",
		Description: "Similarity ratio (0-1) of two texts and whether the second would pass the diversity gate against the first.",
	}, similarityHandler(tk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_judgment",
		Description: "Extract the verdict and explanation from a judge reply in 'Answer: ... Explanation: ...' form.",
	}, parseJudgmentHandler(tk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_diverse",
		Description: "Ask a model for several mutually dissimilar human-style answers to one survey prompt.",
	}, generateDiverseHandler(tk))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "judge_response",
		Description: "Ask a judge model whether a response to a prompt was written by a human or an AI.",
	}, judgeResponseHandler(tk))
}

// --- Input types ---

type similarityInput struct {
	A         string  `json:"a"                   jsonschema:"First text"`
	B         string  `json:"b"                   jsonschema:"Second text"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"Rejection threshold in [0,1] (default from config)"`
}

type parseJudgmentInput struct {
	Raw string `json:"raw" jsonschema:"Raw judge reply"`
}

type generateDiverseInput struct {
	Prompt      string `json:"prompt"                 jsonschema:"Survey prompt to answer"`
	Model       string `json:"model,omitempty"        jsonschema:"Model selector: gpt-4, gpt-3.5, an alias, or provider:model (default gpt-4)"`
	TargetCount int    `json:"target_count,omitempty" jsonschema:"How many distinct answers to collect (default from config)"`
	MaxAttempts int    `json:"max_attempts,omitempty" jsonschema:"Call budget (default from config)"`
}

type judgeResponseInput struct {
	Question string `json:"question"        jsonschema:"The prompt the response answers"`
	Response string `json:"response"        jsonschema:"The response to classify"`
	Model    string `json:"model,omitempty" jsonschema:"Judge model selector (default gpt-4)"`
}

// --- Handlers ---

func similarityHandler(tk *toolkit) func(context.Context, *mcp.CallToolRequest, similarityInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input similarityInput) (*mcp.CallToolResult, any, error) {
		threshold := tk.cfg.Generation.Threshold()
		if input.Threshold != nil {
			threshold = *input.Threshold
		}
		return textResult(jsonString(map[string]any{
			"similarity": turingprobe.Similarity(input.A, input.B),
			"threshold":  threshold,
			"accepted":   turingprobe.Accept(input.B, []string{input.A}, threshold),
		})), nil, nil
	}
}

func parseJudgmentHandler(tk *toolkit) func(context.Context, *mcp.CallToolRequest, parseJudgmentInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input parseJudgmentInput) (*mcp.CallToolResult, any, error) {
		guess, explanation := turingprobe.ParseJudgment(input.Raw)
		return textResult(jsonString(map[string]any{
			"guess":       guess,
			"explanation": explanation,
		})), nil, nil
	}
}

func generateDiverseHandler(tk *toolkit) func(context.Context, *mcp.CallToolRequest, generateDiverseInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input generateDiverseInput) (*mcp.CallToolResult, any, error) {
		if input.Prompt == "" {
			return textResult(`{"error": "prompt is required"}`), nil, nil
		}
		selector := defaultString(input.Model, "gpt-4")
		llm, spec, err := tk.resolve(ctx, selector)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}

		gc := tk.cfg.Generation
		if input.TargetCount > 0 {
			gc.TargetCount = input.TargetCount
		}
		if input.MaxAttempts > 0 {
			gc.MaxAttempts = input.MaxAttempts
		}
		gen := turingprobe.NewGenerator(llm, spec.Model, gc, turingprobe.WithGeneratorLogger(tk.logger))
		responses := gen.Generate(ctx, input.Prompt)

		return textResult(jsonString(map[string]any{
			"model":     selector,
			"target":    gc.TargetCount,
			"responses": responses,
		})), nil, nil
	}
}

func judgeResponseHandler(tk *toolkit) func(context.Context, *mcp.CallToolRequest, judgeResponseInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input judgeResponseInput) (*mcp.CallToolResult, any, error) {
		if input.Response == "" {
			return textResult(`{"error": "response is required"}`), nil, nil
		}
		selector := defaultString(input.Model, "gpt-4")
		llm, spec, err := tk.resolve(ctx, selector)
		if err != nil {
			return textResult(fmt.Sprintf("error: %v", err)), nil, nil
		}

		run := turingprobe.NewJudgeRun(llm, spec.Model, tk.cfg.Judge, "", turingprobe.WithJudgeLogger(tk.logger))
		rec := run.JudgeOne(ctx, turingprobe.ResponseRecord{Question: input.Question, Response: input.Response}, selector)

		return textResult(jsonString(map[string]any{
			"guess":       rec.Guess,
			"explanation": rec.Explanation,
			"judge_model": rec.JudgeModel,
		})), nil, nil
	}
}

func (tk *toolkit) resolve(ctx context.Context, selector string) (turingprobe.TextGenerator, turingprobe.ModelSpec, error) {
	spec, err := tk.cfg.ResolveModel(selector)
	if err != nil {
		return nil, turingprobe.ModelSpec{}, err
	}
	llm, err := tk.newLLM(ctx, spec.Provider, tk.cfg.Providers)
	if err != nil {
		return nil, turingprobe.ModelSpec{}, err
	}
	return llm, spec, nil
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonString(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal: %v"}`, err)
	}
	return string(data)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
