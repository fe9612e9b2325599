package main

import (
	"fmt"

	turingprobe "github.com/goblincore/turingprobe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	generateModel   string
	generatePrompts string
	generateOut     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate diverse AI responses for every prompt",
	Long: `Reads one prompt per line and asks the selected model for up to
target_count mutually dissimilar answers per prompt, each with a randomly
sampled phrasing and answer style. The output table is rewritten after every
prompt, so an interrupted run keeps all completed prompts.

Example:
  turingprobe generate --model gpt-3.5
  turingprobe generate --model anthropic:claude-3-5-haiku-latest --out data`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateModel, "model", "", "Model selector: gpt-4, gpt-3.5, an alias, or provider:model (required)")
	generateCmd.Flags().StringVar(&generatePrompts, "prompts", "", "Prompts file (default from config)")
	generateCmd.Flags().StringVar(&generateOut, "out", "", "Output directory (default: data dir)")
	generateCmd.MarkFlagRequired("model")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	promptsPath := flagOr(cmd, "prompts", generatePrompts, cfg.PromptsPath)
	prompts, err := turingprobe.ReadPrompts(promptsPath)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		return fmt.Errorf("no prompts in %s", promptsPath)
	}

	llm, spec, err := textGeneratorFor(ctx, generateModel)
	if err != nil {
		return err
	}

	gen := turingprobe.NewGenerator(llm, spec.Model, cfg.Generation,
		turingprobe.WithGeneratorLogger(logger))
	run := turingprobe.NewGenerationRun(gen, flagOr(cmd, "out", generateOut, cfg.DataDir), logger)

	logger.Info("generating responses",
		zap.String("model", generateModel),
		zap.Int("prompts", len(prompts)),
		zap.Int("target", cfg.Generation.TargetCount))

	rows, err := run.Run(ctx, prompts, generateModel)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d responses to %s\n", len(rows), run.Path(generateModel))
	return nil
}
