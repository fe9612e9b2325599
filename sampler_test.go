package turingprobe

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhrasingTemplatesHaveOneSlot(t *testing.T) {
	require.Len(t, PhrasingTemplates, 5)
	require.Len(t, StyleInstructions, 7)
	for _, p := range PhrasingTemplates {
		assert.Equal(t, 1, strings.Count(p, "%s"), p)
	}
}

func TestSamplerDeterministicForSeed(t *testing.T) {
	a, b := NewSampler(7), NewSampler(7)
	for range 50 {
		assert.Equal(t, a.Sample(), b.Sample())
	}
}

func TestSamplerSeedZeroReachable(t *testing.T) {
	seeded := NewSampler(7)
	viaSource := NewSamplerFromRand(rand.New(SamplerSource(7)))
	for range 20 {
		assert.Equal(t, seeded.Sample(), viaSource.Sample())
	}

	a := NewSamplerFromRand(rand.New(SamplerSource(0)))
	b := NewSamplerFromRand(rand.New(SamplerSource(0)))
	for range 20 {
		assert.Equal(t, a.Sample(), b.Sample())
	}
}

func TestSamplerCoversAllEntries(t *testing.T) {
	s := NewSamplerFromRand(rand.New(rand.NewPCG(1, 2)))
	phrasings := map[string]bool{}
	styles := map[string]bool{}
	for range 2000 {
		v := s.Sample()
		phrasings[v.Phrasing] = true
		styles[v.Style] = true
	}
	assert.Len(t, phrasings, len(PhrasingTemplates))
	assert.Len(t, styles, len(StyleInstructions))
}

func TestVariantFrame(t *testing.T) {
	v := Variant{Phrasing: "Just a casual reply to: %s", Style: "Be quirky or weird."}
	assert.Equal(t, "Just a casual reply to: Why?", v.Frame("Why?"))
}

func TestComposeInstruction(t *testing.T) {
	v := Variant{Phrasing: "Question: %s", Style: "Keep it very dry and factual."}
	got := ComposeInstruction("What is 2+2?", v)
	assert.Equal(t,
		"You are simulating a human respondent in a survey. Keep it very dry and factual. "+
			"Try not to repeat yourself. 1–4 sentences max.\n\nQuestion: What is 2+2?",
		got)
}
