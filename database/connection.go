package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"medbot-backend/config"
)

// Connect opens the configured backend and returns its repository.
func Connect(cfg *config.Config) (Repository, error) {
	switch cfg.Database.Type {
	case "mongodb":
		if err := ConnectMongoDB(cfg); err != nil {
			return nil, err
		}
		return NewMongoRepository(GetMongoDB()), nil
	case "memory":
		return NewMemoryRepository(), nil
	default:
		return nil, errors.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// Disconnect closes database connection
func Disconnect(cfg *config.Config) error {
	switch cfg.Database.Type {
	case "mongodb":
		return DisconnectMongoDB()
	default:
		return nil
	}
}

// HealthCheck performs a database health check
func HealthCheck(ctx context.Context, cfg *config.Config) error {
	switch cfg.Database.Type {
	case "mongodb":
		client := GetMongoClient()
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return client.Ping(ctx, readpref.Primary())
	case "memory":
		return nil
	default:
		return errors.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}
