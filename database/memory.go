package database

import (
	"context"
	"sync"

	"medbot-backend/models"
)

// MemoryRepository keeps everything in process; used when DB_TYPE=memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	messages []models.Message
	bookings []models.Booking
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveMessage(_ context.Context, msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *MemoryRepository) SaveBooking(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, *booking)
	return nil
}

func (r *MemoryRepository) ListBookings(_ context.Context, sessionID string) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range r.bookings {
		if b.SessionID == sessionID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Messages returns the stored messages for a session in insertion order.
func (r *MemoryRepository) Messages(sessionID string) []models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Message
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out
}
