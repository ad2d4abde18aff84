package resolver

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
)

// Classifier is an external collaborator that labels symptom text with one
// of the given departments.
type Classifier interface {
	ClassifyDepartment(ctx context.Context, text string, labels []string) (string, error)
}

// ClassifierResolver trusts the classifier only when it answers with a label
// from the closed set.
type ClassifierResolver struct {
	classifier Classifier
	labels     []string
}

func NewClassifierResolver(c Classifier) *ClassifierResolver {
	return &ClassifierResolver{classifier: c, labels: Departments}
}

func (r *ClassifierResolver) Resolve(ctx context.Context, text string) string {
	label, err := r.classifier.ClassifyDepartment(ctx, text, r.labels)
	if err != nil {
		log.Warn().Err(err).Msg("Department classifier failed, falling back to rules")
		return ""
	}
	label = strings.TrimSpace(label)
	for _, known := range r.labels {
		if strings.EqualFold(known, label) {
			return known
		}
	}
	log.Debug().Str("label", label).Msg("Classifier answered outside the label set")
	return ""
}
