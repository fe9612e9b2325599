package turingprobe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepAccepts(t *testing.T) {
	s := generationState{Target: 2, Budget: 5}
	s, out := step(s, callResult{Text: "  first answer \n"}, 0.8)
	assert.Equal(t, outcomeAccepted, out)
	assert.Equal(t, []string{"first answer"}, s.Accepted)
	assert.Equal(t, 1, s.Attempts)
	assert.False(t, s.done())
}

func TestStepRejectsDuplicate(t *testing.T) {
	s := generationState{Accepted: []string{"same"}, Attempts: 1, Target: 5, Budget: 5}
	s, out := step(s, callResult{Text: "same"}, 0.8)
	assert.Equal(t, outcomeTooSimilar, out)
	assert.Len(t, s.Accepted, 1)
	assert.Equal(t, 2, s.Attempts)
}

func TestStepFailureConsumesAttempt(t *testing.T) {
	s := generationState{Target: 5, Budget: 1}
	s, out := step(s, callResult{Err: errors.New("rate limited")}, 0.8)
	assert.Equal(t, outcomeFailed, out)
	assert.Empty(t, s.Accepted)
	assert.Equal(t, 1, s.Attempts)
	assert.True(t, s.done())
	assert.Equal(t, 5, s.shortfall())
}

func TestStepDoesNotAliasInput(t *testing.T) {
	backing := make([]string, 1, 4)
	backing[0] = "aaaa"
	orig := generationState{Accepted: backing, Target: 5, Budget: 5}

	next, _ := step(orig, callResult{Text: "zzzz"}, 0.8)
	other, _ := step(orig, callResult{Text: "qqqq"}, 0.8)

	assert.Equal(t, []string{"aaaa", "zzzz"}, next.Accepted)
	assert.Equal(t, []string{"aaaa", "qqqq"}, other.Accepted)
	assert.Len(t, orig.Accepted, 1)
}

func TestDoneAtTarget(t *testing.T) {
	s := generationState{Accepted: []string{"a", "b"}, Attempts: 2, Target: 2, Budget: 30}
	assert.True(t, s.done())
	assert.Zero(t, s.shortfall())
}

func TestStepOutcomeString(t *testing.T) {
	assert.Equal(t, "accepted", outcomeAccepted.String())
	assert.Equal(t, "too_similar", outcomeTooSimilar.String())
	assert.Equal(t, "failed", outcomeFailed.String())
	assert.Equal(t, "unknown", stepOutcome(99).String())
}
