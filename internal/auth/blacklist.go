package auth

import (
	"context"
	"time"
)

// TokenBlacklist records revoked token IDs until their natural expiry.
type TokenBlacklist interface {
	// Add revokes the token with the given jti; the entry expires at
	// the token's original expiry time.
	Add(ctx context.Context, jti string, originalExpiry time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}
