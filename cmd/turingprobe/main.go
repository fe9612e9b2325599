// turingprobe runs the human-vs-AI text study end to end.
//
// Stages:
//
//	turingprobe generate --model gpt-4      # diverse AI responses per prompt
//	turingprobe label                       # merge sources into one dataset
//	turingprobe judge --model gpt-4         # ask a model to tell human from AI
//	turingprobe report                      # score the judge
//
// Credentials come from OPENAI_API_KEY, ANTHROPIC_API_KEY and GEMINI_API_KEY.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	turingprobe "github.com/goblincore/turingprobe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	cfg    turingprobe.Config
	logger *zap.Logger

	// newTextGenerator is swapped out in tests.
	newTextGenerator = turingprobe.NewTextGenerator
)

var rootCmd = &cobra.Command{
	Use:   "turingprobe",
	Short: "Generate, label and judge human vs AI survey responses",
	Long: `turingprobe collects diverse AI answers to survey prompts, merges them
with human answers into a labeled dataset, asks a judge model to classify
each answer as human or AI, and reports how well the judge did.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logger == nil {
			logger, err = turingprobe.NewLogger(verbose)
			if err != nil {
				return err
			}
		}
		cfg, err = turingprobe.LoadConfig(configPath)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.String("data_dir", cfg.DataDir))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "turingprobe.yaml", "YAML config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(labelCmd)
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "interrupted; completed work was saved")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// textGeneratorFor resolves a model selector and builds its adapter.
func textGeneratorFor(ctx context.Context, selector string) (turingprobe.TextGenerator, turingprobe.ModelSpec, error) {
	spec, err := cfg.ResolveModel(selector)
	if err != nil {
		return nil, turingprobe.ModelSpec{}, err
	}
	llm, err := newTextGenerator(ctx, spec.Provider, cfg.Providers)
	if err != nil {
		return nil, turingprobe.ModelSpec{}, err
	}
	logger.Debug("model resolved",
		zap.String("selector", selector),
		zap.String("provider", spec.Provider),
		zap.String("model", spec.Model))
	return llm, spec, nil
}

// flagOr returns the flag value when set, else fallback.
func flagOr(cmd *cobra.Command, name, value, fallback string) string {
	if cmd.Flags().Changed(name) && value != "" {
		return value
	}
	return fallback
}
