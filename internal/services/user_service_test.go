package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/apperrors"
	"studychat/internal/models"
	"studychat/internal/storage"
)

func TestSearchUsers(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice Chen")
	createTestUser(t, db, "alicia", "Alicia")
	createTestUser(t, db, "bob", "Bob Ali")
	inactive := createTestUser(t, db, "alina", "Alina")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)
	svc := NewUserService(storage.NewGormUserRepository(db))
	ctx := context.Background()

	// Substring match on username or display name, caller excluded.
	results, err := svc.SearchUsers(ctx, alice.ID, "ali")
	require.NoError(t, err)
	usernames := make([]string, 0, len(results))
	for _, u := range results {
		usernames = append(usernames, u.Username)
	}
	assert.ElementsMatch(t, []string{"alicia", "bob"}, usernames)

	// Empty query lists everyone else who is active.
	results, err = svc.SearchUsers(ctx, alice.ID, "  ")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = svc.SearchUsers(ctx, alice.ID, "zzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetBasicInfo(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	svc := NewUserService(storage.NewGormUserRepository(db))
	ctx := context.Background()

	info, err := svc.GetBasicInfo(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, &models.UserBasicInfo{ID: alice.ID, Username: "alice", Name: "Alice"}, info)

	_, err = svc.GetBasicInfo(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
