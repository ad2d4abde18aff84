package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"medbot-backend/utils"
)

func TestExtractTime(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{text: "book at 11am", want: "11:00", ok: true},
		{text: "2:30 pm works", want: "14:30", ok: true},
		{text: "around 12 PM", want: "12:00", ok: true},
		{text: "12am", want: "00:00", ok: true},
		{text: "at 14.15", want: "14:15", ok: true},
		{text: "9:05", want: "09:05", ok: true},
		{text: "25:00 then 10:30", want: "10:30", ok: true},
		{text: "13pm", ok: false},
		{text: "room 42", ok: false},
		{text: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := utils.ExtractTime(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractCity(t *testing.T) {
	cities := []string{"Kochi", "Chennai", "Trivandrum"}

	assert.Equal(t, "Kochi", utils.ExtractCity("I have chest pain in kochi", cities))
	assert.Equal(t, "Chennai", utils.ExtractCity("CHENNAI please", cities))
	assert.Equal(t, "", utils.ExtractCity("somewhere in Mumbai", cities))
	assert.Equal(t, "", utils.ExtractCity("", cities))
}

func TestExtractDepartment_WholeWord(t *testing.T) {
	depts := []string{"ENT", "Cardiology", "General Medicine"}

	assert.Equal(t, "", utils.ExtractDepartment("book an appointment", depts))
	assert.Equal(t, "ENT", utils.ExtractDepartment("need an ent specialist", depts))
	assert.Equal(t, "Cardiology", utils.ExtractDepartment("cardiology at 11am", depts))
	assert.Equal(t, "General Medicine", utils.ExtractDepartment("general medicine doctors", depts))
}

func TestExtractHospital(t *testing.T) {
	names := []string{"Lakeshore Hospital", "Aster Medcity"}

	assert.Equal(t, "Aster Medcity", utils.ExtractHospital("book at aster medcity", names))
	assert.Equal(t, "", utils.ExtractHospital("book anywhere", names))
}

func TestExtractDate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	t.Run("tomorrow", func(t *testing.T) {
		d, ok := utils.ExtractDate("book for tomorrow", now)
		assert.True(t, ok)
		assert.Equal(t, "2025-03-11", d.Format(utils.DateLayout))
	})

	t.Run("today is explicit", func(t *testing.T) {
		d, ok := utils.ExtractDate("today please", now)
		assert.True(t, ok)
		assert.Equal(t, "2025-03-10", d.Format(utils.DateLayout))
	})

	t.Run("time of day alone is not a date", func(t *testing.T) {
		_, ok := utils.ExtractDate("at 11am", now)
		assert.False(t, ok)
	})

	t.Run("no date", func(t *testing.T) {
		_, ok := utils.ExtractDate("cardiology please", now)
		assert.False(t, ok)
	})
}

func TestRemoveWords(t *testing.T) {
	cities := []string{"Kochi", "Chennai"}
	hospitals := []string{"Aster Medcity", "Lakeshore Hospital"}

	tests := []struct {
		text string
		want string
	}{
		{text: "headache in Kochi at Aster Medcity", want: "headache in at"},
		{text: "KOCHI", want: ""},
		{text: "Kochin fever", want: "Kochin fever"},
		{text: "  rash   near lakeshore hospital ", want: "rash near"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.RemoveWords(tt.text, cities, hospitals))
		})
	}
}
