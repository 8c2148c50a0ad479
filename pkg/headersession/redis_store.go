package headersession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hsess:"

// RedisStore implements Store backed by Redis. Sessions are stored as
// JSON values with a TTL matching their expiry, so DeleteExpired is a
// no-op and Redis handles eviction.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store. ttl is the lifetime
// given to sessions the store creates itself.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get retrieves the session under key, creating one when createIfAbsent
// is set and no live session exists.
func (s *RedisStore) Get(ctx context.Context, key string, createIfAbsent bool) (*Session, error) {
	if key == "" {
		return nil, ErrInvalidSession
	}

	payload, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		if !createIfAbsent {
			return nil, ErrSessionNotFound
		}
		session := NewSession(key, s.ttl)
		if err := s.Save(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	case err != nil:
		return nil, fmt.Errorf("headersession: redis get: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("headersession: decode session %q: %w", key, err)
	}

	// The TTL should have evicted it, but guard against clock skew.
	if session.IsExpired() {
		_ = s.Delete(ctx, key)
		if !createIfAbsent {
			return nil, ErrSessionExpired
		}
		fresh := NewSession(key, s.ttl)
		if err := s.Save(ctx, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}

	return &session, nil
}

// Save persists the session under its key with a TTL matching its expiry.
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	if session == nil || session.Key == "" {
		return ErrInvalidSession
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("headersession: encode session %q: %w", session.Key, err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	if err := s.client.Set(ctx, redisKeyPrefix+session.Key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("headersession: redis set: %w", err)
	}
	return nil
}

// Delete removes the session stored under key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("headersession: redis del: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; Redis evicts sessions via per-key TTLs.
func (s *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}
