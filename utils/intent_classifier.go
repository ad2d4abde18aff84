package utils

import (
	"regexp"
	"strings"

	"medbot-backend/models"
)

// IntentRule is one entry of the classifier's priority list. A rule fires
// when any keyword occurs in the lowered message (as a whole word when
// WholeWord is set) or, for booking, when the message carries a time.
type IntentRule struct {
	Intent    models.MessageIntent `json:"intent"`
	Keywords  []string             `json:"keywords"`
	WholeWord bool                 `json:"whole_word,omitempty"`
	MatchTime bool                 `json:"match_time,omitempty"`

	pattern *regexp.Regexp
}

func (r IntentRule) matches(message string) bool {
	if r.MatchTime {
		if _, ok := ExtractTime(message); ok {
			return true
		}
	}
	if r.pattern != nil {
		return r.pattern.MatchString(message)
	}
	return containsAny(message, r.Keywords)
}

type IntentClassifier struct {
	rules []IntentRule
}

// NewIntentClassifier returns the classifier with its fixed priority order:
// symptom, booking, doctor list, hospital list, greeting. Anything else
// continues the previous intent or falls back.
func NewIntentClassifier() *IntentClassifier {
	rules := []IntentRule{
		{
			Intent: models.IntentSymptom,
			Keywords: []string{
				"pain", "fever", "rash", "ache", "vomit", "cough", "headache",
				"nausea", "dizz", "migraine", "itch", "breath", "sore",
				"swelling", "bleeding",
			},
		},
		{
			Intent:    models.IntentBooking,
			Keywords:  []string{"book", "appointment", "schedule", "reserve", "confirm"},
			MatchTime: true,
		},
		{
			Intent:   models.IntentDoctorList,
			Keywords: []string{"doctor", "doctors", "specialist", "physician"},
		},
		{
			Intent:   models.IntentHospitalList,
			Keywords: []string{"hospital", "hospitals", "nearby", "clinic"},
		},
		{
			Intent:    models.IntentGreeting,
			Keywords:  []string{"hi", "hello", "hey", "good morning", "good evening", "namaste"},
			WholeWord: true,
		},
	}
	for i := range rules {
		if rules[i].WholeWord {
			rules[i].pattern = wordPattern(rules[i].Keywords)
		}
	}
	return &IntentClassifier{rules: rules}
}

// Match returns the intent of the first rule that fires on message.
func (ic *IntentClassifier) Match(message string) (models.MessageIntent, bool) {
	message = strings.ToLower(message)
	for _, rule := range ic.rules {
		if rule.matches(message) {
			return rule.Intent, true
		}
	}
	return "", false
}

// ClassifyIntent returns the first rule that fires, else last (the
// session's previous intent) when there is one, else fallback.
func (ic *IntentClassifier) ClassifyIntent(message string, last models.MessageIntent) models.MessageIntent {
	if intent, ok := ic.Match(message); ok {
		return intent
	}
	if last != "" && last != models.IntentFallback {
		return last
	}
	return models.IntentFallback
}

var affirmativePattern = regexp.MustCompile(`(?i)^\s*(?:yes|yeah|yep|yup|ok|okay|sure|go ahead|please do)\b`)

// IsAffirmative reports whether message opens with a plain "yes".
func IsAffirmative(message string) bool {
	return affirmativePattern.MatchString(message)
}

// Rules exposes the ordered rule list.
func (ic *IntentClassifier) Rules() []IntentRule {
	out := make([]IntentRule, len(ic.rules))
	copy(out, ic.rules)
	return out
}

func containsAny(message string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return false
}

func wordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
