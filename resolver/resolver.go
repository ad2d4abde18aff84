// Package resolver maps free-text symptom descriptions to a medical
// department label. Every strategy returns "" when it has no opinion; Chain
// turns that into DefaultDepartment, so callers always get a label.
package resolver

import (
	"context"
	"strings"

	"medbot-backend/models"
)

const DefaultDepartment = "General Medicine"

const (
	StrategyRules      = "rules"
	StrategyClassifier = "classifier"
)

// Departments is the closed label set an external classifier may answer with.
var Departments = []string{
	"Cardiology", "Neurology", "Orthopedics", "Dermatology",
	"Gastroenterology", "ENT", "Ophthalmology", "Pulmonology",
	"Pediatrics", "Gynecology", "Urology", "Psychiatry",
	"Endocrinology", "General Medicine",
}

type Resolver interface {
	Resolve(ctx context.Context, text string) string
}

// SubstringResolver returns the department of the first symptom phrase
// contained in the text.
type SubstringResolver struct {
	rules []models.SymptomRule
}

func NewSubstringResolver(rules []models.SymptomRule) *SubstringResolver {
	return &SubstringResolver{rules: rules}
}

func (r *SubstringResolver) Resolve(_ context.Context, text string) string {
	low := strings.ToLower(text)
	for _, rule := range r.rules {
		if phrase := strings.ToLower(strings.TrimSpace(rule.Symptom)); phrase != "" && strings.Contains(low, phrase) {
			return rule.Department
		}
	}
	return ""
}

// Chain asks each resolver in turn and falls back to DefaultDepartment.
type Chain []Resolver

func (c Chain) Resolve(ctx context.Context, text string) string {
	for _, r := range c {
		if r == nil {
			continue
		}
		if dept := r.Resolve(ctx, text); dept != "" {
			return dept
		}
	}
	return DefaultDepartment
}

// New builds the resolver for a configured strategy. The rules strategy is
// substring, fuzzy, keyword; the classifier strategy puts the external
// classifier in front of the same rules.
func New(strategy string, rules []models.SymptomRule, cutoff float64, classifier Classifier) Resolver {
	chain := Chain{
		NewSubstringResolver(rules),
		NewFuzzyResolver(rules, cutoff),
		NewKeywordResolver(),
	}
	if strategy == StrategyClassifier && classifier != nil {
		chain = append(Chain{NewClassifierResolver(classifier)}, chain...)
	}
	return chain
}

// NewStrict is the rules chain without fuzzy matching, for follow-up turns
// where similarity scores on short replies are noise.
func NewStrict(rules []models.SymptomRule) Resolver {
	return Chain{
		NewSubstringResolver(rules),
		NewKeywordResolver(),
	}
}
