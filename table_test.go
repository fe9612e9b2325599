package turingprobe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.txt")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFFFirst question?\r\n\n   \n  Second question?  \n"), 0644))

	got, err := ReadPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"First question?", "Second question?"}, got)
}

func TestReadPromptsMissing(t *testing.T) {
	_, err := ReadPrompts(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestJudgmentsTableQuoting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "llm_judgments_gpt-4.csv")
	rows := []JudgmentRecord{{
		Question:    `Rewrite this sentence to sound more formal: “I messed up the report.”`,
		Response:    "I made an error,\nand \"owned\" it.",
		Source:      "gpt4",
		Guess:       "ai",
		Explanation: "",
		JudgeModel:  "gpt-4",
	}}
	require.NoError(t, WriteJudgments(path, rows))

	got, err := ReadJudgments(path)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(raw) > 0)
	assert.Equal(t, "question,response,source,llm_guess,explanation,judge_model\n", string(raw[:len("question,response,source,llm_guess,explanation,judge_model\n")]))
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, WriteResponses(path, []ResponseRecord{{Question: "q", Response: "r", Source: "s"}}))
	require.NoError(t, WriteResponses(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())

	rows, err := ReadResponses(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadResponsesHeaderLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("\uFEFFSource,extra,Question,Response\nhuman,x,Q1,R1\n"), 0644))

	rows, err := ReadResponses(path)
	require.NoError(t, err)
	assert.Equal(t, []ResponseRecord{{Question: "Q1", Response: "R1", Source: "human"}}, rows)
}

func TestReadResponsesRequiresSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, os.WriteFile(path, []byte("question,response\nQ,R\n"), 0644))

	_, err := ReadResponses(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns source")
}

func TestReadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := ReadJudgments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}
