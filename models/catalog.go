package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "17:00"
)

// Hospital is one (hospital, department) pairing; a hospital offering N
// departments appears N times with the same ID.
type Hospital struct {
	ID         string  `json:"hospital_id" validate:"required"`
	Name       string  `json:"hospital_name" validate:"required"`
	City       string  `json:"city" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Rating     float64 `json:"rating" validate:"gte=0,lte=5"`
}

type Doctor struct {
	ID         string  `json:"doctor_id" validate:"required"`
	HospitalID string  `json:"hospital_id" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Name       string  `json:"doctor_name" validate:"required"`
	Fee        float64 `json:"fee" validate:"gte=0"`
	StartTime  string  `json:"start_time" validate:"required"`
	EndTime    string  `json:"end_time" validate:"required"`
}

type Review struct {
	HospitalID string `json:"hospital_id"`
	Text       string `json:"review_text"`
}

// SymptomRule maps a symptom phrase to a department label.
type SymptomRule struct {
	Symptom    string `json:"symptom"`
	Department string `json:"department"`
}

// Window returns the doctor's availability window as minutes after midnight.
func (d Doctor) Window() (start, end int, err error) {
	if start, err = ClockMinutes(d.StartTime); err != nil {
		return 0, 0, errors.Wrapf(err, "doctor %s start time", d.ID)
	}
	if end, err = ClockMinutes(d.EndTime); err != nil {
		return 0, 0, errors.Wrapf(err, "doctor %s end time", d.ID)
	}
	return start, end, nil
}

// Available reports whether clock ("HH:MM") lies inside [start, end].
func (d Doctor) Available(clock string) (bool, error) {
	start, end, err := d.Window()
	if err != nil {
		return false, err
	}
	t, err := ClockMinutes(clock)
	if err != nil {
		return false, err
	}
	return start <= t && t <= end, nil
}

// ClockMinutes parses "H:MM" / "HH:MM" into minutes after midnight.
func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Clock12 renders "HH:MM" as "hh:mm AM", leaving unparseable input untouched.
func Clock12(clock string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		return clock
	}
	return t.Format("03:04 PM")
}
