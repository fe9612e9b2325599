package main

import (
	"fmt"

	turingprobe "github.com/goblincore/turingprobe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	reportIn      string
	reportFigures string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Score a judgment table overall and per topic",
	Long: `Treats "human" as the positive class and prints accuracy, precision,
recall, F1 and confusion matrices overall and per topic, plus the source mix
per topic. The same numbers are saved as report.json in the figures dir,
together with PNG charts: the confusion matrix overall and per topic, scores
by topic and the source mix by topic.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportIn, "in", "", "Judgment table (default: <data>/llm_judgments_gpt-4.csv)")
	reportCmd.Flags().StringVar(&reportFigures, "figures", "", "Directory for report.json and charts (default from config)")
}

func runReport(cmd *cobra.Command, args []string) error {
	in := flagOr(cmd, "in", reportIn, turingprobe.JudgmentsPath(cfg.DataDir, "gpt-4"))
	rows, err := turingprobe.ReadJudgments(in)
	if err != nil {
		return err
	}

	report, err := turingprobe.BuildReport(cmd.Context(), rows, cfg.Topics)
	if err != nil {
		return err
	}
	if err := turingprobe.RenderReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	figures := flagOr(cmd, "figures", reportFigures, cfg.FiguresDir)
	path, err := turingprobe.WriteReportJSON(figures, report)
	if err != nil {
		return err
	}
	charts, err := turingprobe.WriteFigures(figures, report)
	if err != nil {
		return err
	}
	logger.Info("report saved",
		zap.String("path", path),
		zap.Int("rows", report.Overall.Rows),
		zap.Int("charts", len(charts)))
	fmt.Fprintf(cmd.OutOrStdout(), "\nreport saved to %s (%d charts)\n", path, len(charts))
	return nil
}
