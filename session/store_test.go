package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medbot-backend/models"
	"medbot-backend/session"
)

func newSession(id string) *models.Session {
	now := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	s := models.NewSession(id, models.UserProfile{Name: "Asha", Age: 34, Gender: "Female", City: "Kochi"}, models.ChannelWeb, now)
	s.AddTurn("user", "I have chest pain", now)
	s.Slots.Set(models.SlotDepartment, "Cardiology")
	s.IssuedBookingIDs = []string{"A1B2C3D"}
	return s
}

func exerciseStore(t *testing.T, store session.Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	s := newSession("s1")
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.User.Name)
	assert.Equal(t, "Cardiology", got.Slots.Get(models.SlotDepartment))
	assert.Len(t, got.Turns, 1)
	assert.True(t, got.HasIssued("A1B2C3D"))

	got.Slots.Set(models.SlotCity, "Kochi")
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.Slots.Get(models.SlotCity), "unsaved changes must not leak into the store")

	require.NoError(t, store.Save(ctx, got))
	again, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Kochi", again.Slots.Get(models.SlotCity))

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Get(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "s1"), session.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, session.NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseStore(t, session.NewRedisStore(client, time.Hour))
}

func TestRedisStore_TTLAndPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, 30*time.Minute)
	require.NoError(t, store.Save(context.Background(), newSession("abc")))

	assert.True(t, mr.Exists(session.KeyPrefix+"abc"))
	assert.Equal(t, 30*time.Minute, mr.TTL(session.KeyPrefix+"abc"))

	mr.FastForward(31 * time.Minute)
	_, err := store.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)
}
