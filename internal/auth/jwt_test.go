package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecretKey: "test-secret",
		JWTExpiry:    time.Minute,
	}
}

// stubBlacklist revokes a fixed set of token IDs.
type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s *stubBlacklist) Add(_ context.Context, jti string, _ time.Time) error {
	if s.revoked == nil {
		s.revoked = map[string]bool{}
	}
	s.revoked[jti] = true
	return nil
}

func (s *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.revoked[jti], nil
}

func TestGenerateAndValidateToken(t *testing.T) {
	cfg := testAuthConfig()
	tokenString, err := GenerateToken(42, "alice", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), tokenString, cfg.JWTSecretKey, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateTokenWrongKey(t *testing.T) {
	tokenString, err := GenerateToken(42, "alice", testAuthConfig())
	require.NoError(t, err)

	_, err = ValidateToken(context.Background(), tokenString, "other-secret", nil)
	assert.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	cfg := testAuthConfig()
	cfg.JWTExpiry = -time.Minute
	tokenString, err := GenerateToken(42, "alice", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(context.Background(), tokenString, cfg.JWTSecretKey, nil)
	assert.Error(t, err)
}

func TestValidateTokenRevoked(t *testing.T) {
	cfg := testAuthConfig()
	tokenString, err := GenerateToken(42, "alice", cfg)
	require.NoError(t, err)

	claims, err := ValidateToken(context.Background(), tokenString, cfg.JWTSecretKey, nil)
	require.NoError(t, err)

	blacklist := &stubBlacklist{}
	require.NoError(t, blacklist.Add(context.Background(), claims.ID, claims.ExpiresAt.Time))

	_, err = ValidateToken(context.Background(), tokenString, cfg.JWTSecretKey, blacklist)
	assert.ErrorContains(t, err, "revoked")
}

func TestValidateTokenBlacklistFailureRejects(t *testing.T) {
	cfg := testAuthConfig()
	tokenString, err := GenerateToken(42, "alice", cfg)
	require.NoError(t, err)

	blacklist := &stubBlacklist{err: assert.AnError}
	_, err = ValidateToken(context.Background(), tokenString, cfg.JWTSecretKey, blacklist)
	assert.Error(t, err)
}
