package vocab

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FuzzyCanonicalizer maps free-form exercise names onto the canonical list.
// It is the local stand-in for an LLM canonicalization service.
type FuzzyCanonicalizer struct {
	names []string
	norm  []string
}

// NewFuzzyCanonicalizer builds a canonicalizer over the vocabulary's canonical names.
func NewFuzzyCanonicalizer(v *Vocabulary) *FuzzyCanonicalizer {
	names := v.CanonicalExercises()
	norm := make([]string, len(names))
	for i, n := range names {
		norm[i] = Normalize(n)
	}
	return &FuzzyCanonicalizer{names: names, norm: norm}
}

// Canonicalize returns the closest canonical name, or "" when nothing is close.
// A candidate must have every word appear as a word prefix in name; among
// candidates the smallest Levenshtein distance wins, longer names break ties.
func (c *FuzzyCanonicalizer) Canonicalize(name string) string {
	target := Normalize(name)
	if target == "" {
		return ""
	}

	best := -1
	bestDist := 0
	for i, cand := range c.norm {
		if cand == target {
			return c.names[i]
		}
		if !fuzzy.MatchNormalizedFold(cand, target) {
			continue
		}
		if !allWordsPresent(cand, target) {
			continue
		}
		dist := fuzzy.LevenshteinDistance(cand, target)
		if best < 0 || dist < bestDist || (dist == bestDist && len(cand) > len(c.norm[best])) {
			best = i
			bestDist = dist
		}
	}
	if best < 0 {
		return ""
	}
	return c.names[best]
}

func allWordsPresent(cand, target string) bool {
	words := strings.Fields(target)
	for _, w := range strings.Fields(cand) {
		found := false
		for _, tw := range words {
			if strings.HasPrefix(tw, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
