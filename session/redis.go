package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"medbot-backend/models"
)

const KeyPrefix = "medbot:session:"

// RedisStore serialises sessions as JSON under KeyPrefix+id. Every Save
// refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return KeyPrefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(err, "get session %s", id)
	}

	var s models.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decode session %s", id)
	}
	if s.Slots == nil {
		s.Slots = models.Slots{}
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *models.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "encode session %s", s.ID)
	}
	if err := r.client.Set(ctx, key(s.ID), data, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "save session %s", s.ID)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, key(id)).Result()
	if err != nil {
		return errors.Wrapf(err, "delete session %s", id)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
