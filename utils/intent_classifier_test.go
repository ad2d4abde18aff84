package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"medbot-backend/models"
	"medbot-backend/utils"
)

func TestClassifyIntent(t *testing.T) {
	ic := utils.NewIntentClassifier()

	tests := []struct {
		name    string
		message string
		last    models.MessageIntent
		want    models.MessageIntent
	}{
		{name: "symptom", message: "I have chest pain in Kochi", want: models.IntentSymptom},
		{name: "symptom beats booking", message: "book an appointment for my headache", want: models.IntentSymptom},
		{name: "booking keyword", message: "Book an appointment please", want: models.IntentBooking},
		{name: "booking by time only", message: "make it 11am", want: models.IntentBooking},
		{name: "booking beats doctor list", message: "schedule with a doctor", want: models.IntentBooking},
		{name: "doctor list", message: "show me cardiology doctors", want: models.IntentDoctorList},
		{name: "hospital list", message: "hospitals in Chennai", want: models.IntentHospitalList},
		{name: "nearby", message: "anything nearby?", want: models.IntentHospitalList},
		{name: "greeting", message: "Hello there", want: models.IntentGreeting},
		{name: "greeting is whole word", message: "Kochi", last: models.IntentSymptom, want: models.IntentSymptom},
		{name: "continuation", message: "Chennai", last: models.IntentHospitalList, want: models.IntentHospitalList},
		{name: "fallback", message: "what is the meaning of life", want: models.IntentFallback},
		{name: "fallback does not continue", message: "what else", last: models.IntentFallback, want: models.IntentFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ic.ClassifyIntent(tt.message, tt.last))
		})
	}
}

func TestRules_Order(t *testing.T) {
	rules := utils.NewIntentClassifier().Rules()

	var order []models.MessageIntent
	for _, r := range rules {
		order = append(order, r.Intent)
	}
	assert.Equal(t, []models.MessageIntent{
		models.IntentSymptom,
		models.IntentBooking,
		models.IntentDoctorList,
		models.IntentHospitalList,
		models.IntentGreeting,
	}, order)

	rules[0].Intent = models.IntentFallback
	assert.Equal(t, models.IntentSymptom, utils.NewIntentClassifier().Rules()[0].Intent)
}

func TestMatch(t *testing.T) {
	ic := utils.NewIntentClassifier()

	intent, ok := ic.Match("Kochi")
	assert.False(t, ok)
	assert.Empty(t, intent)

	intent, ok = ic.Match("hi")
	assert.True(t, ok)
	assert.Equal(t, models.IntentGreeting, intent)
}

func TestIsAffirmative(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{message: "yes", want: true},
		{message: "Yes please", want: true},
		{message: "  ok", want: true},
		{message: "okay, do it", want: true},
		{message: "sure", want: true},
		{message: "go ahead", want: true},
		{message: "yesterday", want: false},
		{message: "okra", want: false},
		{message: "not sure", want: false},
		{message: "Kochi", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.IsAffirmative(tt.message))
		})
	}
}
