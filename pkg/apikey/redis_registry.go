package apikey

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry implements Registry over a Redis set, so keys can be
// issued and revoked at runtime without redeploying.
type RedisRegistry struct {
	client redis.UniversalClient
	setKey string
}

// NewRedisRegistry creates a Redis-backed registry over the given set.
func NewRedisRegistry(client redis.UniversalClient, setKey string) *RedisRegistry {
	if setKey == "" {
		setKey = "apikeys"
	}
	return &RedisRegistry{client: client, setKey: setKey}
}

// Exists reports whether key is a member of the registry set.
func (r *RedisRegistry) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.setKey, key).Result()
	if err != nil {
		return false, fmt.Errorf("apikey: redis sismember: %w", err)
	}
	return ok, nil
}

// Add registers a key.
func (r *RedisRegistry) Add(ctx context.Context, key string) error {
	if err := r.client.SAdd(ctx, r.setKey, key).Err(); err != nil {
		return fmt.Errorf("apikey: redis sadd: %w", err)
	}
	return nil
}

// Remove revokes a key.
func (r *RedisRegistry) Remove(ctx context.Context, key string) error {
	if err := r.client.SRem(ctx, r.setKey, key).Err(); err != nil {
		return fmt.Errorf("apikey: redis srem: %w", err)
	}
	return nil
}
