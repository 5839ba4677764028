package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, 6*time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "whatsapp:+5551999990000")
	require.ErrorIs(t, err, ErrNotFound)

	s := &Session{
		PatientID: "whatsapp:+5551999990000",
		State:     "ask_reason",
		Data:      Data{BillingMode: BillingParticular, Reason: "Consulta"},
	}
	require.NoError(t, store.Put(ctx, s))

	got, err := store.Get(ctx, "whatsapp:+5551999990000")
	require.NoError(t, err)
	require.Equal(t, "ask_reason", got.State)
	require.Equal(t, "Consulta", got.Data.Reason)
}

func TestRedisStoreTTLExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, 6*time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Session{PatientID: "p1", State: "welcome"}))

	mr.FastForward(7 * time.Hour)

	_, err := store.Get(ctx, "p1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorePutRefreshesTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, 6*time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Session{PatientID: "p1", State: "welcome"}))
	mr.FastForward(5 * time.Hour)
	require.NoError(t, store.Put(ctx, &Session{PatientID: "p1", State: "ask_reason"}))
	mr.FastForward(5 * time.Hour)

	got, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "ask_reason", got.State)
}

func TestRedisStoreDelete(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Session{PatientID: "p1", State: "booked"}))
	require.NoError(t, store.Delete(ctx, "p1"))

	_, err := store.Get(ctx, "p1")
	require.True(t, errors.Is(err, ErrNotFound))
}
