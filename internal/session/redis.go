package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists sessions as JSON values with a TTL, making the
// dialogue survive restarts and allowing multiple instances to share state.
// Expiry is handled by Redis itself; no sweeper is needed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps a redis client. ttl bounds session idle time; every
// Put refreshes it.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(patientID string) string {
	return "session:" + patientID
}

// Get fetches and decodes the session, or ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, patientID string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(patientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session: decode session %s: %w", patientID, err)
	}
	return &s, nil
}

// Put encodes and stores the session, refreshing the TTL.
func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	s.UpdatedAt = time.Now()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode session %s: %w", s.PatientID, err)
	}
	if err := r.client.Set(ctx, sessionKey(s.PatientID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Delete removes the session.
func (r *RedisStore) Delete(ctx context.Context, patientID string) error {
	if err := r.client.Del(ctx, sessionKey(patientID)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
