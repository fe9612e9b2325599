package turingprobe

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	responseHeader = []string{"question", "response", "source"}
	judgmentHeader = []string{"question", "response", "source", "llm_guess", "explanation", "judge_model"}
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ResponsesPath is where a generation run for model writes its table:
// <dir>/<model without non-alphanumerics>_responses_styled.csv.
func ResponsesPath(dir, model string) string {
	return filepath.Join(dir, nonAlphanumeric.ReplaceAllString(model, "")+"_responses_styled.csv")
}

// JudgmentsPath is where a judging run for judgeModel writes its table.
// Dots are dropped and path separators replaced, so "gpt-3.5-turbo" becomes
// llm_judgments_gpt-35-turbo.csv.
func JudgmentsPath(dir, judgeModel string) string {
	name := strings.ReplaceAll(judgeModel, ".", "")
	name = strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(name)
	return filepath.Join(dir, "llm_judgments_"+name+".csv")
}

// ReadPrompts reads one prompt per nonblank line, trimmed.
func ReadPrompts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("turingprobe: open prompts: %w", err)
	}
	defer f.Close()

	var prompts []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\uFEFF"))
		if line != "" {
			prompts = append(prompts, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("turingprobe: read prompts: %w", err)
	}
	return prompts, nil
}

// WriteResponses replaces path with a full response table.
func WriteResponses(path string, rows []ResponseRecord) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Question, r.Response, r.Source}
	}
	return writeCSVAtomic(path, responseHeader, records)
}

// WriteJudgments replaces path with a full judgment table.
func WriteJudgments(path string, rows []JudgmentRecord) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.Question, r.Response, r.Source, r.Guess, r.Explanation, r.JudgeModel}
	}
	return writeCSVAtomic(path, judgmentHeader, records)
}

// ReadResponses loads a {question, response, source} table. Columns are
// located by header name; extra columns are ignored.
func ReadResponses(path string) ([]ResponseRecord, error) {
	return readResponses(path, true)
}

func readResponses(path string, requireSource bool) ([]ResponseRecord, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	required := responseHeader[:2]
	if requireSource {
		required = responseHeader
	}
	idx, err := columnIndex(header, required)
	if err != nil {
		return nil, fmt.Errorf("turingprobe: %s: %w", path, err)
	}

	out := make([]ResponseRecord, 0, len(rows))
	for _, row := range rows {
		rec := ResponseRecord{
			Question: field(row, idx["question"]),
			Response: field(row, idx["response"]),
		}
		if i, ok := idx["source"]; ok {
			rec.Source = field(row, i)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadJudgments loads a judgment table written by WriteJudgments.
func ReadJudgments(path string) ([]JudgmentRecord, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, judgmentHeader)
	if err != nil {
		return nil, fmt.Errorf("turingprobe: %s: %w", path, err)
	}

	out := make([]JudgmentRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, JudgmentRecord{
			Question:    field(row, idx["question"]),
			Response:    field(row, idx["response"]),
			Source:      field(row, idx["source"]),
			Guess:       field(row, idx["llm_guess"]),
			Explanation: field(row, idx["explanation"]),
			JudgeModel:  field(row, idx["judge_model"]),
		})
	}
	return out, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("turingprobe: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("turingprobe: %s: empty file", path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("turingprobe: read %s: %w", path, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("turingprobe: read %s: %w", path, err)
	}
	return header, rows, nil
}

func columnIndex(header, required []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// writeCSVAtomic writes to a temp file in the target directory and renames it
// over path, so readers never observe a partially written table.
func writeCSVAtomic(path string, header []string, rows [][]string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("turingprobe: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("turingprobe: create temp: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("turingprobe: write %s: %w", path, err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("turingprobe: write %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("turingprobe: sync %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("turingprobe: close %s: %w", path, err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("turingprobe: rename %s: %w", path, err)
	}
	return nil
}
