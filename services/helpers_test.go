package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medbot-backend/catalog"
	"medbot-backend/models"
)

var fixedNow = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	hospitals := []models.Hospital{
		{ID: "H001", Name: "Lakeshore Hospital", City: "Kochi", Department: "Cardiology", Rating: 4.6},
		{ID: "H002", Name: "Aster Medcity", City: "Kochi", Department: "Cardiology", Rating: 4.8},
		{ID: "H002", Name: "Aster Medcity", City: "Kochi", Department: "Orthopedics", Rating: 4.8},
		{ID: "H003", Name: "Amrita Hospital", City: "Kochi", Department: "General Medicine", Rating: 4.4},
		{ID: "H004", Name: "Apollo Hospitals", City: "Chennai", Department: "Cardiology", Rating: 4.5},
		{ID: "H005", Name: "MIOT International", City: "Chennai", Department: "Dermatology", Rating: 4.3},
	}
	doctors := []models.Doctor{
		{ID: "D001", Name: "Dr. Anil Menon", HospitalID: "H001", Department: "Cardiology", Fee: 800, StartTime: "09:00", EndTime: "13:00"},
		{ID: "D003", Name: "Dr. Rahul Pillai", HospitalID: "H002", Department: "Cardiology", Fee: 1000, StartTime: "09:00", EndTime: "17:00"},
		{ID: "D004", Name: "Dr. Sneha Varma", HospitalID: "H002", Department: "Orthopedics", Fee: 750, StartTime: "11:00", EndTime: "18:00"},
		{ID: "D007", Name: "Dr. Arun Kumar", HospitalID: "H003", Department: "General Medicine", Fee: 400},
		{ID: "D008", Name: "Dr. Meena Iyer", HospitalID: "H004", Department: "Cardiology", Fee: 1200, StartTime: "09:00", EndTime: "13:00"},
	}
	symptoms := []models.SymptomRule{
		{Symptom: "chest pain", Department: "Cardiology"},
		{Symptom: "back pain", Department: "Orthopedics"},
		{Symptom: "skin rash", Department: "Dermatology"},
	}

	reviews := []models.Review{
		{HospitalID: "H002", Text: "Clean facilities and short waiting times."},
		{HospitalID: "H002", Text: "Doctors explained everything clearly."},
		{HospitalID: "H002", Text: "Parking was hard to find."},
		{HospitalID: "H001", Text: "Very attentive cardiology team."},
	}

	cat, err := catalog.New(hospitals, doctors, reviews, symptoms)
	require.NoError(t, err)
	return cat
}

// sequence returns ids from list in order, repeating the last one.
func sequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i]
		if i < len(ids)-1 {
			i++
		}
		return id
	}
}

// realCatalog loads the catalog shipped in data/.
func realCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load("../data")
	require.NoError(t, err)
	return cat
}
