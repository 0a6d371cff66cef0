package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisDriver "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlacklist(t *testing.T) (*miniredis.Miniredis, *redisTokenBlacklist) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisDriver.NewClient(&redisDriver.Options{Addr: mr.Addr()})
	return mr, &redisTokenBlacklist{client: client}
}

func TestAddAndCheck(t *testing.T) {
	_, blacklist := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, blacklist.Add(ctx, "jti-1", time.Now().Add(time.Hour)))

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsBlacklisted(ctx, "jti-unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestEntryExpiresWithToken(t *testing.T) {
	mr, blacklist := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, blacklist.Add(ctx, "jti-2", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	revoked, err := blacklist.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestAddExpiredTokenIsNoop(t *testing.T) {
	mr, blacklist := newTestBlacklist(t)
	ctx := context.Background()

	require.NoError(t, blacklist.Add(ctx, "jti-3", time.Now().Add(-time.Minute)))
	assert.False(t, mr.Exists(blacklistKeyPrefix+"jti-3"))
}
