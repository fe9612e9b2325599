package turingprobe

import (
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultSimilarityThreshold is the ratio above which a candidate counts as a
// near-duplicate of an already accepted response.
const DefaultSimilarityThreshold = 0.8

// Similarity returns the SequenceMatcher ratio of two texts, compared rune by rune.
//
//	ratio = 2×M / T
//
// where M is the number of runes in matching blocks and T the total rune count
// of both texts. 1.0 means identical, 0 means nothing in common. Two empty
// texts are identical.
//
// The matcher's block search is not order-independent, so the pair is ordered
// before matching. Similarity(a, b) == Similarity(b, a) always holds.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if b < a {
		a, b = b, a
	}
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

// Accept reports whether candidate is novel enough to join accepted: its
// similarity to every accepted text must be at most threshold.
// An empty accepted set always accepts.
func Accept(candidate string, accepted []string, threshold float64) bool {
	for _, existing := range accepted {
		if Similarity(candidate, existing) > threshold {
			return false
		}
	}
	return true
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
