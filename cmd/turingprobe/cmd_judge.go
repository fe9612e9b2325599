package main

import (
	"fmt"
	"path/filepath"

	turingprobe "github.com/goblincore/turingprobe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	judgeModel     string
	judgeIn        string
	judgeOut       string
	judgeSeed      int64
	judgeNoShuffle bool
)

var judgeCmd = &cobra.Command{
	Use:   "judge",
	Short: "Ask a model whether each response was written by a human or an AI",
	Long: `Shuffles the labeled dataset (seed 42 unless overridden), asks the judge
model for a verdict and a short reason for every row, and saves the judgments
after each row. Failed calls are recorded with guess "error".

Example:
  turingprobe judge --model gpt-4
  turingprobe judge --model gemini:gemini-2.0-flash --no-shuffle`,
	RunE: runJudge,
}

func init() {
	judgeCmd.Flags().StringVar(&judgeModel, "model", "", "Judge model selector (required)")
	judgeCmd.Flags().StringVar(&judgeIn, "in", "", "Labeled dataset (default: <data>/labeled_dataset.csv)")
	judgeCmd.Flags().StringVar(&judgeOut, "out", "", "Output directory (default: data dir)")
	judgeCmd.Flags().Int64Var(&judgeSeed, "seed", turingprobe.DefaultShuffleSeed, "Row shuffle seed")
	judgeCmd.Flags().BoolVar(&judgeNoShuffle, "no-shuffle", false, "Judge rows in file order")
	judgeCmd.MarkFlagRequired("model")
}

func runJudge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	in := flagOr(cmd, "in", judgeIn, filepath.Join(cfg.DataDir, cfg.DatasetFile))
	rows, err := turingprobe.ReadResponses(in)
	if err != nil {
		return err
	}

	jc := cfg.Judge
	if cmd.Flags().Changed("seed") {
		seed := judgeSeed
		jc.ShuffleSeed = &seed
	}
	if judgeNoShuffle {
		jc.NoShuffle = true
		jc.ShuffleSeed = nil
	}

	llm, spec, err := textGeneratorFor(ctx, judgeModel)
	if err != nil {
		return err
	}

	run := turingprobe.NewJudgeRun(llm, spec.Model, jc, flagOr(cmd, "out", judgeOut, cfg.DataDir),
		turingprobe.WithJudgeLogger(logger))

	logger.Info("judging dataset", zap.String("judge", judgeModel), zap.Int("rows", len(rows)))
	judged, err := run.Run(ctx, rows, judgeModel)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d judgments to %s\n", len(judged), run.Path(judgeModel))
	return nil
}
