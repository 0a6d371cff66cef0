// Package redis holds the Redis-backed implementations of the storage
// interfaces that need shared volatile state across server processes.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"studychat/internal/auth"
)

const blacklistKeyPrefix = "bl:jti:"

type redisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist creates a TokenBlacklist backed by Redis. Both
// servers point at the same instance so a token revoked through the
// account service is rejected everywhere at once.
func NewRedisTokenBlacklist(client *redis.Client) auth.TokenBlacklist {
	return &redisTokenBlacklist{client: client}
}

func (r *redisTokenBlacklist) Add(ctx context.Context, jti string, originalExpiry time.Time) error {
	duration := time.Until(originalExpiry)
	if duration <= 0 {
		// Already expired; token validation rejects it anyway.
		return nil
	}

	key := blacklistKeyPrefix + jti
	if err := r.client.Set(ctx, key, "revoked", duration).Err(); err != nil {
		return fmt.Errorf("failed to blacklist jti %s: %w", jti, err)
	}
	return nil
}

func (r *redisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	key := blacklistKeyPrefix + jti
	err := r.client.Get(ctx, key).Err()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist for jti %s: %w", jti, err)
	}
	return true, nil
}
