// Package session keeps per-conversation context between turns.
package session

import (
	"context"

	"github.com/pkg/errors"

	"medbot-backend/models"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Delete(ctx context.Context, id string) error
}
