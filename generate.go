package turingprobe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// surveyPersona is the fixed framing of every generation instruction.
const surveyPersona = "You are simulating a human respondent in a survey."

// brevityConstraint is appended after the style directive.
const brevityConstraint = "Try not to repeat yourself. 1–4 sentences max."

// ComposeInstruction builds the single instruction sent for one attempt.
func ComposeInstruction(prompt string, v Variant) string {
	return fmt.Sprintf("%s %s %s\n\n%s", surveyPersona, v.Style, brevityConstraint, v.Frame(prompt))
}

// Sleeper pauses for d or until ctx is done, returning ctx.Err() in that case.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generator collects a diverse set of responses to one prompt by repeatedly
// calling a TextGenerator, keeping only responses that pass the similarity gate.
type Generator struct {
	llm     TextGenerator
	model   string
	cfg     GenerationConfig
	sampler *Sampler
	sleep   Sleeper
	log     *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSampler injects the variant sampler. The default is NewSampler(cfg.Seed),
// which is time-seeded when cfg.Seed is 0.
func WithSampler(s *Sampler) GeneratorOption {
	return func(g *Generator) { g.sampler = s }
}

// WithSleeper replaces the inter-call pause (tests pass a no-op).
func WithSleeper(s Sleeper) GeneratorOption {
	return func(g *Generator) { g.sleep = s }
}

// WithGeneratorLogger sets the logger (default: no-op).
func WithGeneratorLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.log = l }
}

// NewGenerator creates a Generator that asks llm for completions from model.
// Zero-valued cfg fields take their defaults.
func NewGenerator(llm TextGenerator, model string, cfg GenerationConfig, opts ...GeneratorOption) *Generator {
	cfg.applyDefaults()
	g := &Generator{
		llm:   llm,
		model: model,
		cfg:   cfg,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.sampler == nil {
		g.sampler = NewSampler(cfg.Seed)
	}
	g.log = loggerOrNop(g.log)
	return g
}

// Generate returns up to cfg.TargetCount mutually dissimilar responses to
// prompt, making at most cfg.MaxAttempts calls. A short result is logged, not
// returned as an error. Cancelling ctx ends the loop with whatever was accepted.
func (g *Generator) Generate(ctx context.Context, prompt string) []string {
	st := generationState{Target: g.cfg.TargetCount, Budget: g.cfg.MaxAttempts}
	log := g.log.With(zap.String("question", prompt), zap.String("model", g.model))

	for !st.done() {
		if ctx.Err() != nil {
			break
		}

		variant := g.sampler.Sample()
		text, err := g.llm.Generate(ctx, GenerationRequest{
			Model:       g.model,
			Prompt:      ComposeInstruction(prompt, variant),
			MaxTokens:   g.cfg.MaxTokens,
			Temperature: g.cfg.Temperature,
			TopP:        g.cfg.TopP,
		})

		var outcome stepOutcome
		st, outcome = step(st, callResult{Text: text, Err: err}, g.cfg.Threshold())

		pause := g.cfg.CallPause
		switch outcome {
		case outcomeAccepted:
			log.Info(fmt.Sprintf("%d/%d", len(st.Accepted), st.Target),
				zap.Int("attempt", st.Attempts),
				zap.String("response", st.Accepted[len(st.Accepted)-1]))
		case outcomeTooSimilar:
			log.Info("too similar, retrying", zap.Int("attempt", st.Attempts))
		case outcomeFailed:
			if ctx.Err() != nil {
				break
			}
			log.Warn("generation call failed", zap.Int("attempt", st.Attempts), zap.Error(err))
			pause = g.cfg.ErrorPause
		}

		if err := g.sleep(ctx, pause); err != nil {
			break
		}
	}

	if ctx.Err() != nil {
		log.Warn("generation interrupted", zap.Int("accepted", len(st.Accepted)), zap.Int("attempts", st.Attempts))
	} else if n := st.shortfall(); n > 0 {
		log.Warn(fmt.Sprintf("only collected %d of %d", len(st.Accepted), st.Target),
			zap.Int("attempts", st.Attempts), zap.Int("missing", n))
	}
	return st.Accepted
}
