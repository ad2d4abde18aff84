package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"medbot-backend/config"
)

const (
	messagesCollection = "messages"
	bookingsCollection = "bookings"
)

var (
	mongoClient *mongo.Client
	mongoDB     *mongo.Database
)

// ConnectMongoDB establishes connection to MongoDB
func ConnectMongoDB(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.BuildDatabaseURI()).
		SetMaxPoolSize(uint64(cfg.Database.MaxConnections)).
		SetMinPoolSize(uint64(cfg.Database.MinConnections)).
		SetMaxConnIdleTime(cfg.Database.MaxIdleTime)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "failed to ping MongoDB")
	}

	mongoClient = client
	mongoDB = client.Database(cfg.Database.Name)

	log.Info().Str("database", cfg.Database.Name).Msg("Connected to MongoDB")

	if err := createIndexes(ctx, mongoDB); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// GetMongoDB returns the MongoDB database instance
func GetMongoDB() *mongo.Database {
	if mongoDB == nil {
		log.Fatal().Msg("MongoDB not initialized")
	}
	return mongoDB
}

// GetMongoClient returns the MongoDB client
func GetMongoClient() *mongo.Client {
	if mongoClient == nil {
		log.Fatal().Msg("MongoDB client not initialized")
	}
	return mongoClient
}

func createIndexes(ctx context.Context, db *mongo.Database) error {
	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "timestamp", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "intent", Value: 1}},
		},
	}
	if _, err := db.Collection(messagesCollection).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return errors.Wrap(err, "failed to create message indexes")
	}

	// Booking ids are only unique within a session.
	bookingIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "booking_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "doctor_id", Value: 1},
				{Key: "date", Value: 1},
			},
		},
	}
	if _, err := db.Collection(bookingsCollection).Indexes().CreateMany(ctx, bookingIndexes); err != nil {
		return errors.Wrap(err, "failed to create booking indexes")
	}

	log.Debug().Msg("Database indexes created successfully")
	return nil
}

// DisconnectMongoDB closes the MongoDB connection
func DisconnectMongoDB() error {
	if mongoClient == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := mongoClient.Disconnect(ctx); err != nil {
		return errors.Wrap(err, "failed to disconnect from MongoDB")
	}

	log.Info().Msg("Disconnected from MongoDB")
	return nil
}
