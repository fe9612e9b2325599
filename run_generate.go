package turingprobe

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerationRun drives a Generator over a prompt corpus and checkpoints the
// accumulated response table after every prompt.
type GenerationRun struct {
	gen       *Generator
	outputDir string
	log       *zap.Logger
}

// NewGenerationRun creates a run that writes into outputDir.
func NewGenerationRun(gen *Generator, outputDir string, log *zap.Logger) *GenerationRun {
	return &GenerationRun{gen: gen, outputDir: outputDir, log: loggerOrNop(log)}
}

// Path returns the table path for source.
func (r *GenerationRun) Path(source string) string {
	return ResponsesPath(r.outputDir, source)
}

// Run generates responses for each prompt in order, tagging rows with source.
// The output table is rewritten in full after each completed prompt, so an
// interruption after prompt k leaves exactly the rows of prompts 1..k on disk.
//
// The returned error is non-nil only when the table cannot be written or ctx
// is cancelled; the rows completed so far are returned either way.
func (r *GenerationRun) Run(ctx context.Context, prompts []string, source string) ([]ResponseRecord, error) {
	path := r.Path(source)
	log := r.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("source", source),
		zap.String("output", path),
	)
	log.Info("generation run started", zap.Int("prompts", len(prompts)))

	var all []ResponseRecord
	for i, q := range prompts {
		log.Info("generating", zap.Int("prompt", i+1), zap.Int("of", len(prompts)), zap.String("question", q))

		responses := r.gen.Generate(ctx, q)
		if err := ctx.Err(); err != nil {
			// The prompt in flight is incomplete; keep the table at prompts 1..i.
			log.Warn("generation run interrupted", zap.Int("completed_prompts", i), zap.Int("rows", len(all)))
			return all, err
		}

		for _, resp := range responses {
			all = append(all, ResponseRecord{Question: q, Response: resp, Source: source})
		}
		if err := WriteResponses(path, all); err != nil {
			return all, fmt.Errorf("turingprobe: checkpoint after prompt %d: %w", i+1, err)
		}
	}

	log.Info("all responses saved", zap.Int("rows", len(all)))
	return all, nil
}
