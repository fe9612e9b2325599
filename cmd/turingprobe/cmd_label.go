package main

import (
	"fmt"
	"path/filepath"

	turingprobe "github.com/goblincore/turingprobe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	labelData string
	labelOut  string
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Merge generated and human responses into a labeled dataset",
	Long: `Reads every configured source file from the data directory, tags each
row with the source's label and writes the combined table. Missing sources
are skipped with a warning.`,
	RunE: runLabel,
}

func init() {
	labelCmd.Flags().StringVar(&labelData, "data", "", "Directory holding the source files (default from config)")
	labelCmd.Flags().StringVar(&labelOut, "out", "", "Output path (default: <data>/labeled_dataset.csv)")
}

func runLabel(cmd *cobra.Command, args []string) error {
	dir := flagOr(cmd, "data", labelData, cfg.DataDir)
	out := flagOr(cmd, "out", labelOut, filepath.Join(dir, cfg.DatasetFile))

	rows, err := turingprobe.MergeSources(dir, cfg.Sources, logger)
	if err != nil {
		return err
	}
	if err := turingprobe.WriteResponses(out, rows); err != nil {
		return err
	}

	for _, c := range turingprobe.CountSources(rows) {
		logger.Info("source count", zap.String("source", c.Source), zap.Int("rows", c.Count))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "labeled dataset saved to %s (%d rows)\n", out, len(rows))
	return nil
}
