package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"medbot-backend/models"
)

const (
	HospitalsFile = "hospitals.csv"
	DoctorsFile   = "doctors.csv"
	ReviewsFile   = "reviews.csv"
	SymptomsFile  = "symptoms_to_department.csv"
)

var (
	requiredHospitalColumns = []string{"hospital_id", "hospital_name", "city", "department", "rating"}
	requiredDoctorColumns   = []string{"doctor_id", "doctor_name", "hospital_id", "department", "fee"}
	requiredReviewColumns   = []string{"hospital_id", "review_text"}
	requiredSymptomColumns  = []string{"symptom", "department"}
)

// MissingColumnsError is returned when a table lacks required columns.
type MissingColumnsError struct {
	File    string
	Missing []string
	Found   []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: missing required columns %v (found %v)", e.File, e.Missing, e.Found)
}

// table is a CSV file with normalised headers.
type table struct {
	file    string
	columns map[string]int
	header  []string
	rows    [][]string
}

func (t *table) has(col string) bool {
	_, ok := t.columns[col]
	return ok
}

func (t *table) get(row []string, col string) string {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{File: t.file, Missing: missing, Found: t.header}
	}
	return nil
}

// normalizeColumn trims, lower-cases and replaces spaces with underscores.
func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func readTable(name string, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s: empty file", name)
	}

	t := &table{file: name, columns: make(map[string]int)}
	for i, h := range records[0] {
		col := normalizeColumn(h)
		t.header = append(t.header, col)
		if _, dup := t.columns[col]; !dup {
			t.columns[col] = i
		}
	}
	t.rows = records[1:]
	return t, nil
}

func openTable(dir, name string) (*table, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readTable(name, f)
}

// Load reads the catalog tables from dir. hospitals.csv and doctors.csv are
// required; reviews.csv and symptoms_to_department.csv are optional.
func Load(dir string) (*Catalog, error) {
	ht, err := openTable(dir, HospitalsFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading hospitals")
	}
	hospitals, err := parseHospitals(ht)
	if err != nil {
		return nil, err
	}

	dt, err := openTable(dir, DoctorsFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading doctors")
	}
	doctors, err := parseDoctors(dt)
	if err != nil {
		return nil, err
	}

	var reviews []models.Review
	if rt, err := openTable(dir, ReviewsFile); err == nil {
		if reviews, err = parseReviews(rt); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "loading reviews")
	}

	var rules []models.SymptomRule
	if st, err := openTable(dir, SymptomsFile); err == nil {
		if rules, err = parseSymptoms(st); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(errors.Cause(err)) {
		log.Warn().Str("file", SymptomsFile).Msg("Symptom table not found, department resolution uses the keyword table only")
	} else {
		return nil, errors.Wrap(err, "loading symptoms")
	}

	c, err := New(hospitals, doctors, reviews, rules)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("hospitals", len(c.hospitals)).
		Int("doctors", len(c.doctors)).
		Int("reviews", len(c.reviews)).
		Int("symptom_rules", len(c.symptoms)).
		Msg("Catalog loaded")
	return c, nil
}

func parseHospitals(t *table) ([]models.Hospital, error) {
	if err := t.require(requiredHospitalColumns...); err != nil {
		return nil, err
	}

	hospitals := make([]models.Hospital, 0, len(t.rows))
	for i, row := range t.rows {
		rating, err := strconv.ParseFloat(t.get(row, "rating"), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s row %d: rating", t.file, i+2)
		}
		hospitals = append(hospitals, models.Hospital{
			ID:         t.get(row, "hospital_id"),
			Name:       t.get(row, "hospital_name"),
			City:       t.get(row, "city"),
			Department: t.get(row, "department"),
			Rating:     rating,
		})
	}
	return hospitals, nil
}

func parseDoctors(t *table) ([]models.Doctor, error) {
	if err := t.require(requiredDoctorColumns...); err != nil {
		return nil, err
	}
	if !t.has("start_time") || !t.has("end_time") {
		log.Warn().Str("file", t.file).Msg("Availability columns missing, using default window")
	}

	doctors := make([]models.Doctor, 0, len(t.rows))
	for i, row := range t.rows {
		fee := 0.0
		if raw := strings.TrimLeft(t.get(row, "fee"), "₹$"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d: fee", t.file, i+2)
			}
			fee = v
		}
		doctors = append(doctors, models.Doctor{
			ID:         t.get(row, "doctor_id"),
			HospitalID: t.get(row, "hospital_id"),
			Department: t.get(row, "department"),
			Name:       t.get(row, "doctor_name"),
			Fee:        fee,
			StartTime:  t.get(row, "start_time"),
			EndTime:    t.get(row, "end_time"),
		})
	}
	return doctors, nil
}

func parseReviews(t *table) ([]models.Review, error) {
	if err := t.require(requiredReviewColumns...); err != nil {
		return nil, err
	}
	reviews := make([]models.Review, 0, len(t.rows))
	for _, row := range t.rows {
		reviews = append(reviews, models.Review{
			HospitalID: t.get(row, "hospital_id"),
			Text:       t.get(row, "review_text"),
		})
	}
	return reviews, nil
}

func parseSymptoms(t *table) ([]models.SymptomRule, error) {
	if err := t.require(requiredSymptomColumns...); err != nil {
		return nil, err
	}
	rules := make([]models.SymptomRule, 0, len(t.rows))
	for _, row := range t.rows {
		symptom := t.get(row, "symptom")
		dept := t.get(row, "department")
		if symptom == "" || dept == "" {
			continue
		}
		rules = append(rules, models.SymptomRule{Symptom: symptom, Department: dept})
	}
	return rules, nil
}
