package models

import (
	"strconv"
	"time"
)

// Booking is immutable once created.
type Booking struct {
	ID            string    `bson:"booking_id" json:"booking_id"`
	SessionID     string    `bson:"session_id" json:"session_id"`
	PatientName   string    `bson:"patient_name" json:"patient_name"`
	PatientAge    int       `bson:"patient_age" json:"patient_age"`
	PatientGender string    `bson:"patient_gender" json:"patient_gender"`
	HospitalID    string    `bson:"hospital_id" json:"hospital_id"`
	HospitalName  string    `bson:"hospital_name" json:"hospital_name"`
	City          string    `bson:"city" json:"city"`
	Department    string    `bson:"department" json:"department"`
	DoctorID      string    `bson:"doctor_id" json:"doctor_id"`
	DoctorName    string    `bson:"doctor_name" json:"doctor_name"`
	Fee           float64   `bson:"fee" json:"fee"`
	Date          string    `bson:"date" json:"date"`
	Time          string    `bson:"time" json:"time"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// Field is one labelled line of a receipt.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Fields flattens the booking into the ordered receipt record.
func (b Booking) Fields() []Field {
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}
	age := "N/A"
	if b.PatientAge > 0 {
		age = strconv.Itoa(b.PatientAge)
	}
	return []Field{
		{Label: "Booking ID", Value: b.ID},
		{Label: "Patient", Value: orNA(b.PatientName)},
		{Label: "Age", Value: age},
		{Label: "Gender", Value: orNA(b.PatientGender)},
		{Label: "Hospital", Value: b.HospitalName},
		{Label: "Department", Value: b.Department},
		{Label: "Doctor", Value: b.DoctorName},
		{Label: "Date", Value: b.Date},
		{Label: "Time", Value: b.Time},
	}
}

// Receipt locates a generated receipt artifact.
type Receipt struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	URL      string `json:"url,omitempty"`
}
