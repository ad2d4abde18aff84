// Package receipt renders booking receipts and keeps them retrievable.
package receipt

//go:generate go run go.uber.org/mock/mockgen -source=./receipt.go -destination=./mocks/issuer_mock.go -package=mocks

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"medbot-backend/models"
)

var namePattern = regexp.MustCompile(`^A[0-9A-F]{6}\.pdf$`)

// Issuer produces a retrievable receipt for a booking.
type Issuer interface {
	Issue(ctx context.Context, booking *models.Booking) (*models.Receipt, error)
}

type Service struct {
	renderer  Renderer
	store     Store
	publicURL string
}

func NewService(renderer Renderer, store Store, publicURL string) *Service {
	return &Service{
		renderer:  renderer,
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

// FileName is the artifact name for a booking id.
func FileName(bookingID string) string {
	return bookingID + ".pdf"
}

func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

func (s *Service) Issue(ctx context.Context, booking *models.Booking) (*models.Receipt, error) {
	name := FileName(booking.ID)
	if !ValidName(name) {
		return nil, errors.Wrapf(ErrInvalidName, "booking id %q", booking.ID)
	}

	data, err := s.renderer.Render(booking.Fields())
	if err != nil {
		return nil, err
	}

	location, err := s.store.Save(ctx, name, data)
	if err != nil {
		return nil, err
	}

	return &models.Receipt{
		Name:     name,
		Location: location,
		URL:      s.publicURL + "/api/v1/receipts/" + name,
	}, nil
}

// Open returns the stored receipt. Names that could escape the store are
// rejected before touching it.
func (s *Service) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	return s.store.Open(ctx, name)
}
