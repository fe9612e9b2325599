package turingprobe

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// PhrasingTemplates frame the survey question. Each has exactly one %s slot.
var PhrasingTemplates = []string{
	"Question: %s",
	"Can you share your answer to this question? %s",
	"Think about this and respond honestly: %s",
	"Write what you'd say to a friend: %s",
	"Just a casual reply to: %s",
}

// StyleInstructions nudge tone and persona for one generation call.
var StyleInstructions = []string{
	"Be humorous and casual.",
	"Answer like you're tired but trying.",
	"Be quirky or weird.",
	"Keep it very dry and factual.",
	"Pretend you're texting a friend.",
	"Respond like you're in a hurry.",
	"Answer as if you're feeling nostalgic.",
}

// Variant is one randomized (phrasing, style) pair.
type Variant struct {
	Phrasing string
	Style    string
}

// Frame substitutes the prompt into the phrasing template.
func (v Variant) Frame(prompt string) string {
	return fmt.Sprintf(v.Phrasing, prompt)
}

// Sampler draws variants uniformly and independently. Repeats are allowed;
// the similarity gate enforces diversity downstream.
// Not safe for concurrent use.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler seeded with seed. Zero means unset and is
// replaced by the current time, so unconfigured runs vary. To pin seed 0
// itself use NewSamplerFromRand(rand.New(SamplerSource(0))).
func NewSampler(seed uint64) *Sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Sampler{rng: rand.New(SamplerSource(seed))}
}

// SamplerSource is the PCG source NewSampler draws from for seed.
func SamplerSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NewSamplerFromRand wraps an existing source.
func NewSamplerFromRand(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Sample returns one phrasing template and one style instruction.
func (s *Sampler) Sample() Variant {
	return Variant{
		Phrasing: PhrasingTemplates[s.rng.IntN(len(PhrasingTemplates))],
		Style:    StyleInstructions[s.rng.IntN(len(StyleInstructions))],
	}
}
