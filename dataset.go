package turingprobe

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
)

// MergeSources builds the labeled dataset: each declared file in dir is read,
// its rows are tagged with the source label (overriding any source column),
// and all rows are concatenated in declaration order. Missing files are
// logged and contribute nothing; malformed files are errors.
func MergeSources(dir string, sources []LabeledSource, log *zap.Logger) ([]ResponseRecord, error) {
	log = loggerOrNop(log)

	var merged []ResponseRecord
	for _, src := range sources {
		path := filepath.Join(dir, src.File)
		rows, err := readResponses(path, false)
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("file not found", zap.String("path", path), zap.String("label", src.Label))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("turingprobe: merge %s: %w", src.Label, err)
		}
		for _, row := range rows {
			row.Source = src.Label
			merged = append(merged, row)
		}
		log.Debug("source merged", zap.String("label", src.Label), zap.Int("rows", len(rows)))
	}
	return merged, nil
}

// SourceCount is the number of rows carrying one source label.
type SourceCount struct {
	Source string
	Count  int
}

// CountSources tallies rows per source, most frequent first.
func CountSources(rows []ResponseRecord) []SourceCount {
	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Source]++
	}
	out := make([]SourceCount, 0, len(counts))
	for s, n := range counts {
		out = append(out, SourceCount{Source: s, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	return out
}
