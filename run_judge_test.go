package turingprobe

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJudgmentsPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "llm_judgments_gpt-4.csv"), JudgmentsPath("data", "gpt-4"))
	assert.Equal(t, filepath.Join("data", "llm_judgments_gpt-35-turbo.csv"), JudgmentsPath("data", "gpt-3.5-turbo"))
	assert.Equal(t, filepath.Join("d", "llm_judgments_ollama_llama3_8b.csv"), JudgmentsPath("d", "ollama:llama3/8b"))
}

func sampleDataset() []ResponseRecord {
	return []ResponseRecord{
		{Question: "Q1", Response: "lol idk", Source: "human"},
		{Question: "Q1", Response: "A considered, balanced answer.", Source: "gpt4"},
		{Question: "Q2", Response: "FAIL", Source: "gpt3.5"},
		{Question: "Q2", Response: "no marker please", Source: "human"},
	}
}

func judgeStub(calls *[]GenerationRequest) TextGeneratorFunc {
	return func(ctx context.Context, req GenerationRequest) (string, error) {
		*calls = append(*calls, req)
		switch {
		case strings.Contains(req.Prompt, "FAIL"):
			return "", errors.New("503 service unavailable")
		case strings.Contains(req.Prompt, "no marker"):
			return "Hard to say.", nil
		case strings.Contains(req.Prompt, "lol"):
			return "Answer: Human\nExplanation: slang", nil
		default:
			return "Answer: AI\nExplanation: polished", nil
		}
	}
}

func TestJudgeRunNoShuffle(t *testing.T) {
	dir := t.TempDir()
	var calls []GenerationRequest
	sl := &recordSleeper{}
	run := NewJudgeRun(judgeStub(&calls), "gpt-4", JudgeConfig{NoShuffle: true}, dir, WithJudgeSleeper(sl.sleep))

	got, err := run.Run(context.Background(), sampleDataset(), "gpt-4")
	require.NoError(t, err)

	want := []JudgmentRecord{
		{Question: "Q1", Response: "lol idk", Source: "human", Guess: "human", Explanation: "slang", JudgeModel: "gpt-4"},
		{Question: "Q1", Response: "A considered, balanced answer.", Source: "gpt4", Guess: "ai", Explanation: "polished", JudgeModel: "gpt-4"},
		{Question: "Q2", Response: "FAIL", Source: "gpt3.5", Guess: "error", Explanation: "503 service unavailable", JudgeModel: "gpt-4"},
		{Question: "Q2", Response: "no marker please", Source: "human", Guess: "unknown", Explanation: "Hard to say.", JudgeModel: "gpt-4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("judgments mismatch (-want +got):\n%s", diff)
	}

	onDisk, err := ReadJudgments(run.Path("gpt-4"))
	require.NoError(t, err)
	if diff := cmp.Diff(want, onDisk); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, calls, 4)
	assert.Equal(t, judgeSystemPrompt, calls[0].System)
	assert.InDelta(t, 0.3, calls[0].Temperature, 1e-9)
	assert.InDelta(t, 1.0, calls[0].TopP, 1e-9)
	assert.Equal(t, 150, calls[0].MaxTokens)
	assert.Equal(t, BuildJudgePrompt("Q1", "lol idk"), calls[0].Prompt)
	assert.Equal(t, []time.Duration{time.Second, time.Second, time.Second}, sl.pauses)
}

func TestJudgeRunShuffleDeterministic(t *testing.T) {
	rows := make([]ResponseRecord, 20)
	for i := range rows {
		rows[i] = ResponseRecord{Question: "Q", Response: strings.Repeat("x", i+1), Source: "human"}
	}

	a := ShuffleRows(rows, 42)
	b := ShuffleRows(rows, 42)
	assert.Equal(t, a, b)
	assert.NotEqual(t, rows, a)
	assert.ElementsMatch(t, rows, a)
	assert.Equal(t, "x", rows[0].Response, "input must not be reordered")

	var calls []GenerationRequest
	run := NewJudgeRun(judgeStub(&calls), "m", JudgeConfig{}, t.TempDir(), WithJudgeSleeper((&recordSleeper{}).sleep))
	got, err := run.Run(context.Background(), rows, "m")
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i := range got {
		assert.Equal(t, a[i].Response, got[i].Response)
	}
}

func TestJudgeRunExplicitSeed(t *testing.T) {
	rows := make([]ResponseRecord, 10)
	for i := range rows {
		rows[i] = ResponseRecord{Question: "Q", Response: strings.Repeat("y", i+1), Source: "gpt4"}
	}
	seed := int64(7)
	var calls []GenerationRequest
	run := NewJudgeRun(judgeStub(&calls), "m", JudgeConfig{ShuffleSeed: &seed}, t.TempDir(), WithJudgeSleeper((&recordSleeper{}).sleep))
	got, err := run.Run(context.Background(), rows, "m")
	require.NoError(t, err)

	want := ShuffleRows(rows, 7)
	for i := range got {
		assert.Equal(t, want[i].Response, got[i].Response)
	}
}

func TestJudgeRunInterrupted(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	llm := TextGeneratorFunc(func(ctx context.Context, req GenerationRequest) (string, error) {
		n++
		if n == 3 {
			cancel()
			return "", ctx.Err()
		}
		return "Answer: AI", nil
	})
	run := NewJudgeRun(llm, "m", JudgeConfig{NoShuffle: true}, dir, WithJudgeSleeper((&recordSleeper{}).sleep))

	got, err := run.Run(ctx, sampleDataset(), "m")
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, got, 2)

	onDisk, err := ReadJudgments(run.Path("m"))
	require.NoError(t, err)
	assert.Len(t, onDisk, 2)
}

func TestJudgeRunEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	run := NewJudgeRun(judgeStub(new([]GenerationRequest)), "m", JudgeConfig{}, dir)
	got, err := run.Run(context.Background(), nil, "m")
	require.NoError(t, err)
	assert.Empty(t, got)

	onDisk, err := ReadJudgments(run.Path("m"))
	require.NoError(t, err)
	assert.Empty(t, onDisk)
}
