package database

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medbot-backend/models"
)

// Repository records conversation history and confirmed bookings.
type Repository interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	SaveBooking(ctx context.Context, booking *models.Booking) error
	ListBookings(ctx context.Context, sessionID string) ([]models.Booking, error)
}

type MongoRepository struct {
	messages *mongo.Collection
	bookings *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		messages: db.Collection(messagesCollection),
		bookings: db.Collection(bookingsCollection),
	}
}

func (r *MongoRepository) SaveMessage(ctx context.Context, msg *models.Message) error {
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return errors.Wrapf(err, "insert message for session %s", msg.SessionID)
	}
	return nil
}

func (r *MongoRepository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	if _, err := r.bookings.InsertOne(ctx, booking); err != nil {
		return errors.Wrapf(err, "insert booking %s", booking.ID)
	}
	return nil
}

func (r *MongoRepository) ListBookings(ctx context.Context, sessionID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.bookings.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "find bookings for session %s", sessionID)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, errors.Wrap(err, "decode bookings")
	}
	return bookings, nil
}
