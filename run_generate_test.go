package turingprobe

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestResponsesPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "gpt4_responses_styled.csv"), ResponsesPath("data", "gpt-4"))
	assert.Equal(t, filepath.Join("data", "gpt35_responses_styled.csv"), ResponsesPath("data", "gpt-3.5"))
	assert.Equal(t, filepath.Join("out", "anthropicclaude3haiku_responses_styled.csv"), ResponsesPath("out", "anthropic:claude-3-haiku"))
}

// perPromptLLM answers each prompt with replies derived from the prompt text.
func perPromptLLM(distinctPerPrompt int) TextGeneratorFunc {
	counts := map[string]int{}
	return func(ctx context.Context, req GenerationRequest) (string, error) {
		q := req.Prompt[strings.LastIndex(req.Prompt, "q"):]
		q = strings.TrimRight(q, "?")
		n := counts[q]
		counts[q]++
		if n >= distinctPerPrompt {
			n = 0
		}
		return q + "-" + strings.Repeat(string(rune('A'+n)), 20), nil
	}
}

func TestGenerationRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	promptsPath := filepath.Join(dir, "prompts.txt")
	require.NoError(t, os.WriteFile(promptsPath, []byte("Weekend plans q1?\nFavourite music q2?\n"), 0644))

	prompts, err := ReadPrompts(promptsPath)
	require.NoError(t, err)
	require.Len(t, prompts, 2)

	fixed := TextGeneratorFunc(func(ctx context.Context, req GenerationRequest) (string, error) {
		return "I honestly have no idea.", nil
	})
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	sl := &recordSleeper{}
	gen := NewGenerator(fixed, "gpt-4", GenerationConfig{TargetCount: 5, MaxAttempts: 30},
		WithSleeper(sl.sleep), WithGeneratorLogger(logger))
	run := NewGenerationRun(gen, dir, logger)

	rows, err := run.Run(context.Background(), prompts, "gpt-4")
	require.NoError(t, err)
	want := []ResponseRecord{
		{Question: "Weekend plans q1?", Response: "I honestly have no idea.", Source: "gpt-4"},
		{Question: "Favourite music q2?", Response: "I honestly have no idea.", Source: "gpt-4"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	onDisk, err := ReadResponses(run.Path("gpt-4"))
	require.NoError(t, err)
	if diff := cmp.Diff(want, onDisk); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, sl.pauses, 60)

	short := logs.FilterMessage("only collected 1 of 5").All()
	require.Len(t, short, 2)
	assert.Equal(t, "Weekend plans q1?", short[0].ContextMap()["question"])
	assert.Equal(t, "Favourite music q2?", short[1].ContextMap()["question"])
	assert.Equal(t, 2, logs.FilterMessage("1/5").Len())
	assert.NotZero(t, logs.FilterMessage("too similar, retrying").Len())
}

func TestGenerationRunInterrupted(t *testing.T) {
	dir := t.TempDir()
	prompts := []string{"first q1?", "second q2?", "third q3?", "fourth q4?"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := perPromptLLM(10)
	llm := TextGeneratorFunc(func(ctx context.Context, req GenerationRequest) (string, error) {
		if strings.Contains(req.Prompt, "q3") {
			cancel()
			return "", ctx.Err()
		}
		return inner(ctx, req)
	})
	gen := NewGenerator(llm, "gpt-4", GenerationConfig{TargetCount: 2, MaxAttempts: 10},
		WithSleeper((&recordSleeper{}).sleep))
	run := NewGenerationRun(gen, dir, nil)

	rows, err := run.Run(ctx, prompts, "gpt-4")
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, rows, 4)

	onDisk, err := ReadResponses(run.Path("gpt-4"))
	require.NoError(t, err)
	require.Len(t, onDisk, 4)
	for _, r := range onDisk {
		assert.Contains(t, []string{"first q1?", "second q2?"}, r.Question)
	}
}

func TestGenerationRunInterruptedBeforeFirstPrompt(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := NewGenerator(perPromptLLM(5), "gpt-4", GenerationConfig{}, WithSleeper((&recordSleeper{}).sleep))
	run := NewGenerationRun(gen, dir, nil)

	rows, err := run.Run(ctx, []string{"q1?"}, "gpt-4")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rows)
	_, statErr := os.Stat(run.Path("gpt-4"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerationRunWriteFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	gen := NewGenerator(perPromptLLM(5), "gpt-4", GenerationConfig{TargetCount: 1}, WithSleeper((&recordSleeper{}).sleep))
	run := NewGenerationRun(gen, filepath.Join(blocker, "sub"), nil)

	_, err := run.Run(context.Background(), []string{"q1?"}, "gpt-4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checkpoint after prompt 1")
}
