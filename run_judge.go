package turingprobe

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JudgeRun asks a judge model to label each row of a dataset as human or AI.
type JudgeRun struct {
	llm       TextGenerator
	model     string
	cfg       JudgeConfig
	outputDir string
	sleep     Sleeper
	log       *zap.Logger
}

// JudgeOption configures a JudgeRun.
type JudgeOption func(*JudgeRun)

// WithJudgeSleeper replaces the inter-row pause.
func WithJudgeSleeper(s Sleeper) JudgeOption {
	return func(j *JudgeRun) { j.sleep = s }
}

// WithJudgeLogger sets the logger (default: no-op).
func WithJudgeLogger(l *zap.Logger) JudgeOption {
	return func(j *JudgeRun) { j.log = l }
}

// NewJudgeRun creates a judging run that calls model through llm and writes
// into outputDir.
func NewJudgeRun(llm TextGenerator, model string, cfg JudgeConfig, outputDir string, opts ...JudgeOption) *JudgeRun {
	cfg.applyDefaults()
	j := &JudgeRun{
		llm:       llm,
		model:     model,
		cfg:       cfg,
		outputDir: outputDir,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.log = loggerOrNop(j.log)
	return j
}

// Path returns the judgment table path for judgeModel.
func (j *JudgeRun) Path(judgeModel string) string {
	return JudgmentsPath(j.outputDir, judgeModel)
}

// ShuffleRows returns a copy of rows in a deterministic order for seed.
func ShuffleRows(rows []ResponseRecord, seed int64) []ResponseRecord {
	out := slices.Clone(rows)
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	rng.Shuffle(len(out), func(i, k int) { out[i], out[k] = out[k], out[i] })
	return out
}

// JudgeOne asks the judge about a single row. Call failures become a record
// with guess "error" and the error text as explanation.
func (j *JudgeRun) JudgeOne(ctx context.Context, row ResponseRecord, judgeModel string) JudgmentRecord {
	rec := JudgmentRecord{
		Question:   row.Question,
		Response:   row.Response,
		Source:     row.Source,
		JudgeModel: judgeModel,
	}

	reply, err := j.llm.Generate(ctx, GenerationRequest{
		Model:       j.model,
		System:      judgeSystemPrompt,
		Prompt:      BuildJudgePrompt(row.Question, row.Response),
		MaxTokens:   j.cfg.MaxTokens,
		Temperature: j.cfg.Temperature,
		TopP:        j.cfg.TopP,
	})
	if err != nil {
		j.log.Warn("judge call failed", zap.Error(err))
		rec.Guess, rec.Explanation = GuessError, err.Error()
		return rec
	}
	rec.Guess, rec.Explanation = ParseJudgment(reply)
	return rec
}

// Run judges every row, one at a time, labelling results with judgeModel.
// The table is checkpointed after each row. Exactly one record is produced
// per input row unless ctx is cancelled, in which case the rows judged so
// far are returned with ctx.Err().
func (j *JudgeRun) Run(ctx context.Context, rows []ResponseRecord, judgeModel string) ([]JudgmentRecord, error) {
	path := j.Path(judgeModel)
	log := j.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("judge_model", judgeModel),
		zap.String("output", path),
	)

	if j.cfg.ShuffleSeed != nil && !j.cfg.NoShuffle {
		rows = ShuffleRows(rows, *j.cfg.ShuffleSeed)
	}

	judged := make([]JudgmentRecord, 0, len(rows))
	for i, row := range rows {
		log.Info(fmt.Sprintf("evaluating %d/%d", i+1, len(rows)))

		rec := j.JudgeOne(ctx, row, judgeModel)
		if err := ctx.Err(); err != nil {
			log.Warn("judging run interrupted", zap.Int("judged", len(judged)))
			return judged, err
		}
		judged = append(judged, rec)

		if err := WriteJudgments(path, judged); err != nil {
			return judged, fmt.Errorf("turingprobe: checkpoint after row %d: %w", i+1, err)
		}
		if i < len(rows)-1 {
			if err := j.sleep(ctx, j.cfg.RowPause); err != nil {
				log.Warn("judging run interrupted", zap.Int("judged", len(judged)))
				return judged, err
			}
		}
	}

	if len(rows) == 0 {
		if err := WriteJudgments(path, judged); err != nil {
			return judged, fmt.Errorf("turingprobe: write judgments: %w", err)
		}
	}
	log.Info("judgments saved", zap.Int("rows", len(judged)))
	return judged, nil
}
