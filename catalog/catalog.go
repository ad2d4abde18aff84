package catalog

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"medbot-backend/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog is the read-only view over hospitals, doctors, reviews and
// symptom rules. Nothing mutates it after New returns.
type Catalog struct {
	hospitals []models.Hospital
	doctors   []models.Doctor
	reviews   []models.Review
	symptoms  []models.SymptomRule

	cities      []string
	departments []string
	names       []string
	byID        map[string]models.Hospital
}

// New validates the rows and builds the lookup indexes. Missing doctor
// availability defaults to 09:00-17:00; a doctor pointing at an unknown
// hospital is an error.
func New(hospitals []models.Hospital, doctors []models.Doctor, reviews []models.Review, symptoms []models.SymptomRule) (*Catalog, error) {
	c := &Catalog{
		hospitals: append([]models.Hospital(nil), hospitals...),
		doctors:   make([]models.Doctor, 0, len(doctors)),
		reviews:   append([]models.Review(nil), reviews...),
		symptoms:  append([]models.SymptomRule(nil), symptoms...),
		byID:      make(map[string]models.Hospital),
	}

	for i, h := range c.hospitals {
		if err := validate.Struct(h); err != nil {
			return nil, errors.Wrapf(err, "hospital row %d", i+1)
		}
		if _, ok := c.byID[h.ID]; !ok {
			c.byID[h.ID] = h
		}
		c.cities = appendUnique(c.cities, h.City)
		c.departments = appendUnique(c.departments, h.Department)
		c.names = appendUnique(c.names, h.Name)
	}

	for i, d := range doctors {
		if d.StartTime == "" {
			d.StartTime = models.DefaultStartTime
		}
		if d.EndTime == "" {
			d.EndTime = models.DefaultEndTime
		}
		if err := validate.Struct(d); err != nil {
			return nil, errors.Wrapf(err, "doctor row %d", i+1)
		}
		if _, _, err := d.Window(); err != nil {
			return nil, errors.Wrapf(err, "doctor row %d", i+1)
		}
		if _, ok := c.byID[d.HospitalID]; !ok {
			return nil, errors.Errorf("doctor %s references unknown hospital %s", d.ID, d.HospitalID)
		}
		c.doctors = append(c.doctors, d)
	}

	return c, nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if strings.EqualFold(existing, v) {
			return list
		}
	}
	return append(list, v)
}

// Cities returns the known cities in first-seen order.
func (c *Catalog) Cities() []string { return c.cities }

// Departments returns the known departments in first-seen order.
func (c *Catalog) Departments() []string { return c.departments }

// HospitalNames returns the distinct hospital names in first-seen order.
func (c *Catalog) HospitalNames() []string { return c.names }

func (c *Catalog) SymptomRules() []models.SymptomRule { return c.symptoms }

// Hospital returns the first row for id.
func (c *Catalog) Hospital(id string) (models.Hospital, bool) {
	h, ok := c.byID[id]
	return h, ok
}

// HospitalByName returns the first row whose name matches, ignoring case.
func (c *Catalog) HospitalByName(name string) (models.Hospital, bool) {
	for _, h := range c.hospitals {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return models.Hospital{}, false
}

// HospitalsInCity returns every row for city in source order.
func (c *Catalog) HospitalsInCity(city string) []models.Hospital {
	var out []models.Hospital
	for _, h := range c.hospitals {
		if strings.EqualFold(h.City, city) {
			out = append(out, h)
		}
	}
	return out
}

// HospitalsFor returns the rows matching city and department, highest rating first.
func (c *Catalog) HospitalsFor(city, department string) []models.Hospital {
	var out []models.Hospital
	for _, h := range c.hospitals {
		if strings.EqualFold(h.City, city) && strings.EqualFold(h.Department, department) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	return out
}

// DoctorsFor returns the doctors of a hospital department in source order.
func (c *Catalog) DoctorsFor(hospitalID, department string) []models.Doctor {
	var out []models.Doctor
	for _, d := range c.doctors {
		if d.HospitalID == hospitalID && strings.EqualFold(d.Department, department) {
			out = append(out, d)
		}
	}
	return out
}

// DoctorsInCity returns the doctors of department at any hospital in city.
func (c *Catalog) DoctorsInCity(city, department string) []models.Doctor {
	var out []models.Doctor
	for _, d := range c.doctors {
		if !strings.EqualFold(d.Department, department) {
			continue
		}
		if h, ok := c.byID[d.HospitalID]; ok && strings.EqualFold(h.City, city) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Catalog) ReviewsFor(hospitalID string) []models.Review {
	var out []models.Review
	for _, r := range c.reviews {
		if r.HospitalID == hospitalID {
			out = append(out, r)
		}
	}
	return out
}
