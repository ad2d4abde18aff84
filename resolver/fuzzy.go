package resolver

import (
	"context"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"medbot-backend/models"
)

const DefaultFuzzyCutoff = 0.4

// FuzzyResolver compares the whole text against each symptom phrase with a
// sequence-matcher ratio and picks the best phrase at or above cutoff.
type FuzzyResolver struct {
	rules  []models.SymptomRule
	cutoff float64
}

func NewFuzzyResolver(rules []models.SymptomRule, cutoff float64) *FuzzyResolver {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultFuzzyCutoff
	}
	return &FuzzyResolver{rules: rules, cutoff: cutoff}
}

func (r *FuzzyResolver) Resolve(_ context.Context, text string) string {
	low := strings.ToLower(strings.TrimSpace(text))
	if low == "" {
		return ""
	}
	target := strings.Split(low, "")

	best, bestScore := "", 0.0
	for _, rule := range r.rules {
		phrase := strings.ToLower(strings.TrimSpace(rule.Symptom))
		if phrase == "" {
			continue
		}
		score := Similarity(phrase, target)
		// ties keep the earlier rule
		if score >= r.cutoff && score > bestScore {
			best, bestScore = rule.Department, score
		}
	}
	return best
}

// Similarity is the difflib ratio between phrase and the pre-split text.
func Similarity(phrase string, text []string) float64 {
	m := difflib.NewMatcher(strings.Split(phrase, ""), text)
	return m.Ratio()
}
