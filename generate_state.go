package turingprobe

import (
	"slices"
	"strings"
)

// generationState is the bounded-retry loop's entire state for one prompt.
type generationState struct {
	Accepted []string
	Attempts int
	Target   int // stop once len(Accepted) reaches this
	Budget   int // stop once Attempts reaches this
}

// callResult is what one generation call produced.
type callResult struct {
	Text string
	Err  error
}

type stepOutcome int

const (
	outcomeAccepted stepOutcome = iota
	outcomeTooSimilar
	outcomeFailed
)

func (o stepOutcome) String() string {
	switch o {
	case outcomeAccepted:
		return "accepted"
	case outcomeTooSimilar:
		return "too_similar"
	case outcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s generationState) done() bool {
	return len(s.Accepted) >= s.Target || s.Attempts >= s.Budget
}

func (s generationState) shortfall() int {
	return max(s.Target-len(s.Accepted), 0)
}

// step applies one call result. Every result consumes one attempt.
// The returned state never shares a backing array with s.
func step(s generationState, res callResult, threshold float64) (generationState, stepOutcome) {
	s.Attempts++
	if res.Err != nil {
		return s, outcomeFailed
	}
	text := strings.TrimSpace(res.Text)
	if !Accept(text, s.Accepted, threshold) {
		return s, outcomeTooSimilar
	}
	s.Accepted = append(slices.Clip(s.Accepted), text)
	return s, outcomeAccepted
}
