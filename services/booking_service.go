package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"medbot-backend/database"
	"medbot-backend/models"
	"medbot-backend/receipt"
)

const (
	bookingIDPrefix = "A"
	maxIDAttempts   = 32
)

var ErrOutsideWindow = errors.New("requested time is outside the doctor's availability window")

// BookingService turns a validated slot tuple into a booking record and
// its receipt.
type BookingService struct {
	issuer receipt.Issuer
	repo   database.Repository
	newID  func() string
	now    func() time.Time
}

// NewBookingService accepts a nil issuer or repository; the booking then
// simply has no receipt or is not persisted.
func NewBookingService(issuer receipt.Issuer, repo database.Repository) *BookingService {
	return &BookingService{
		issuer: issuer,
		repo:   repo,
		newID:  NewBookingID,
		now:    time.Now,
	}
}

// NewBookingID returns "A" followed by six upper-case hex digits.
func NewBookingID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return bookingIDPrefix + strings.ToUpper(hex[:6])
}

// Finalize creates the booking, records its id on the session and clears
// the pending slots. The returned receipt is nil when issuing failed; the
// booking stands regardless.
func (s *BookingService) Finalize(
	ctx context.Context,
	sess *models.Session,
	hospital models.Hospital,
	doctor models.Doctor,
	department, date, clock string,
) (*models.Booking, *models.Receipt, error) {
	ok, err := doctor.Available(clock)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "check availability of %s", doctor.ID)
	}
	if !ok {
		return nil, nil, ErrOutsideWindow
	}

	id, err := s.uniqueID(sess)
	if err != nil {
		return nil, nil, err
	}

	booking := &models.Booking{
		ID:            id,
		SessionID:     sess.ID,
		PatientName:   sess.User.Name,
		PatientAge:    sess.User.Age,
		PatientGender: sess.User.Gender,
		HospitalID:    hospital.ID,
		HospitalName:  hospital.Name,
		City:          hospital.City,
		Department:    department,
		DoctorID:      doctor.ID,
		DoctorName:    doctor.Name,
		Fee:           doctor.Fee,
		Date:          date,
		Time:          clock,
		CreatedAt:     s.now(),
	}

	sess.IssuedBookingIDs = append(sess.IssuedBookingIDs, id)
	sess.Slots.Clear()

	log.Info().
		Str("session_id", sess.ID).
		Str("booking_id", id).
		Str("doctor_id", doctor.ID).
		Str("date", date).
		Str("time", clock).
		Msg("Booking created")

	var rec *models.Receipt
	if s.issuer != nil {
		rec, err = s.issuer.Issue(ctx, booking)
		if err != nil {
			log.Warn().Err(err).Str("booking_id", id).Msg("Receipt generation failed")
			rec = nil
		}
	}

	if s.repo != nil {
		if err := s.repo.SaveBooking(ctx, booking); err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("Failed to persist booking")
		}
	}

	return booking, rec, nil
}

// uniqueID draws ids until one has not been issued in this session.
// Uniqueness across sessions is not checked.
func (s *BookingService) uniqueID(sess *models.Session) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if !sess.HasIssued(id) {
			return id, nil
		}
	}
	return "", errors.Errorf("no unused booking id after %d attempts", maxIDAttempts)
}

// WithIDGenerator replaces the booking id source.
func (s *BookingService) WithIDGenerator(fn func() string) *BookingService {
	s.newID = fn
	return s
}

func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}
