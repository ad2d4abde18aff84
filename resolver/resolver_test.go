package resolver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"medbot-backend/models"
	"medbot-backend/resolver"
)

var testRules = []models.SymptomRule{
	{Symptom: "chest pain", Department: "Cardiology"},
	{Symptom: "skin rash", Department: "Dermatology"},
	{Symptom: "Blurred Vision", Department: "Ophthalmology"},
}

type stubClassifier struct {
	label  string
	err    error
	called int
}

func (s *stubClassifier) ClassifyDepartment(_ context.Context, _ string, _ []string) (string, error) {
	s.called++
	return s.label, s.err
}

func TestSubstringResolver(t *testing.T) {
	r := resolver.NewSubstringResolver(testRules)
	ctx := context.Background()

	assert.Equal(t, "Cardiology", r.Resolve(ctx, "I have CHEST PAIN since morning"))
	assert.Equal(t, "Ophthalmology", r.Resolve(ctx, "blurred vision in one eye"))
	assert.Equal(t, "", r.Resolve(ctx, "my tooth hurts"))
}

func TestFuzzyResolver(t *testing.T) {
	r := resolver.NewFuzzyResolver(testRules, 0.4)
	ctx := context.Background()

	assert.Equal(t, "Cardiology", r.Resolve(ctx, "chest pian"))
	assert.Equal(t, "Dermatology", r.Resolve(ctx, "skin rashes"))
	assert.Equal(t, "", r.Resolve(ctx, "qqqq"))
	assert.Equal(t, "", r.Resolve(ctx, "   "))
}

func TestFuzzyResolver_InvalidCutoffUsesDefault(t *testing.T) {
	r := resolver.NewFuzzyResolver(testRules, 0)
	assert.Equal(t, "Cardiology", r.Resolve(context.Background(), "chest pian"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, resolver.Similarity("abc", []string{"a", "b", "c"}), 1e-9)
	assert.InDelta(t, 0.0, resolver.Similarity("abc", []string{"x", "y", "z"}), 1e-9)
}

func TestKeywordResolver(t *testing.T) {
	r := resolver.NewKeywordResolver()
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{text: "palpitations at night", want: "Cardiology"},
		{text: "terrible migraine", want: "Neurology"},
		{text: "my knee pain is back", want: "Orthopedics"},
		{text: "thyroid problems", want: "Endocrinology"},
		{text: "worried about a tumor", want: "Oncology"},
		{text: "nothing specific", want: ""},
		{text: "earache since last night", want: "ENT"},
		{text: "since last year", want: ""},
		{text: "any clinic nearby", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(ctx, tt.text))
		})
	}
}

func TestChain_FallsBackToDefault(t *testing.T) {
	r := resolver.New(resolver.StrategyRules, testRules, 0.4, nil)
	assert.Equal(t, resolver.DefaultDepartment, r.Resolve(context.Background(), "zzzz"))
	assert.Equal(t, "Cardiology", r.Resolve(context.Background(), "chest pain"))
}

func TestChain_SkipsNilResolvers(t *testing.T) {
	c := resolver.Chain{nil, resolver.NewKeywordResolver()}
	assert.Equal(t, "Pulmonology", c.Resolve(context.Background(), "asthma"))
}

func TestClassifierStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("label in set wins", func(t *testing.T) {
		c := &stubClassifier{label: " neurology\n"}
		r := resolver.New(resolver.StrategyClassifier, testRules, 0.4, c)
		assert.Equal(t, "Neurology", r.Resolve(ctx, "chest pain"))
		assert.Equal(t, 1, c.called)
	})

	t.Run("label outside set falls back to rules", func(t *testing.T) {
		c := &stubClassifier{label: "Astrology"}
		r := resolver.New(resolver.StrategyClassifier, testRules, 0.4, c)
		assert.Equal(t, "Cardiology", r.Resolve(ctx, "chest pain"))
	})

	t.Run("error falls back to rules", func(t *testing.T) {
		c := &stubClassifier{err: errors.New("quota exceeded")}
		r := resolver.New(resolver.StrategyClassifier, testRules, 0.4, c)
		assert.Equal(t, "Dermatology", r.Resolve(ctx, "skin rash on arm"))
	})

	t.Run("rules strategy never asks the classifier", func(t *testing.T) {
		c := &stubClassifier{label: "Neurology"}
		r := resolver.New(resolver.StrategyRules, testRules, 0.4, c)
		assert.Equal(t, "Cardiology", r.Resolve(ctx, "chest pain"))
		assert.Zero(t, c.called)
	})
}

func TestNewStrict(t *testing.T) {
	r := resolver.NewStrict(testRules)
	ctx := context.Background()

	tests := []struct {
		text string
		want string
	}{
		{text: "chest pain again", want: "Cardiology"},
		{text: "chest pian", want: resolver.DefaultDepartment},
		{text: "yes please", want: resolver.DefaultDepartment},
		{text: "and a migraine", want: "Neurology"},
		{text: "", want: resolver.DefaultDepartment},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(ctx, tt.text))
		})
	}
}
