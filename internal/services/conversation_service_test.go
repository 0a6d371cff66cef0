package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/models"
	"studychat/internal/storage"
)

func TestListConversations(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	bob := createTestUser(t, db, "bob", "Bob")
	carol := createTestUser(t, db, "carol", "Carol")
	edgeRepo := storage.NewGormFriendEdgeRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	userRepo := storage.NewGormUserRepository(db)
	friendSvc := NewFriendService(db, edgeRepo, userRepo, &fakePublisher{})
	messageSvc := NewMessageService(messageRepo, storage.NewGormGroupRepository(db), &fakePublisher{})
	svc := NewConversationService(edgeRepo, messageRepo, userRepo)
	ctx := context.Background()

	befriend := func(a, b uint) {
		_, err := friendSvc.SendRequest(ctx, a, b)
		require.NoError(t, err)
		_, err = friendSvc.AcceptRequest(ctx, b, a)
		require.NoError(t, err)
	}
	befriend(alice.ID, bob.ID)
	befriend(alice.ID, carol.ID)

	// Only the bob conversation has history; timestamps need to differ
	// for the ordering assertion, so space the writes out.
	_, err := messageSvc.SendDirectMessage(ctx, bob.ID, alice.ID, "hey", "")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = messageSvc.SendDirectMessage(ctx, bob.ID, alice.ID, "you there?", "")
	require.NoError(t, err)

	conversations, err := svc.ListConversations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Active conversation first, empty one last.
	assert.Equal(t, bob.ID, conversations[0].User.ID)
	require.NotNil(t, conversations[0].LastMessage)
	assert.Equal(t, "you there?", conversations[0].LastMessage.Content)
	assert.Equal(t, int64(2), conversations[0].UnreadCount)

	assert.Equal(t, carol.ID, conversations[1].User.ID)
	assert.Nil(t, conversations[1].LastMessage)
	assert.Equal(t, int64(0), conversations[1].UnreadCount)
}

func TestListConversationsUnreadCycle(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	bob := createTestUser(t, db, "bob", "Bob")
	edgeRepo := storage.NewGormFriendEdgeRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	userRepo := storage.NewGormUserRepository(db)
	friendSvc := NewFriendService(db, edgeRepo, userRepo, &fakePublisher{})
	messageSvc := NewMessageService(messageRepo, storage.NewGormGroupRepository(db), &fakePublisher{})
	svc := NewConversationService(edgeRepo, messageRepo, userRepo)
	ctx := context.Background()

	_, err := friendSvc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = friendSvc.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	unreadFor := func(userID uint) int64 {
		conversations, err := svc.ListConversations(ctx, userID)
		require.NoError(t, err)
		require.Len(t, conversations, 1)
		return conversations[0].UnreadCount
	}

	_, err = messageSvc.SendDirectMessage(ctx, bob.ID, alice.ID, "ping", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadFor(alice.ID))
	assert.Equal(t, int64(0), unreadFor(bob.ID))

	_, err = messageSvc.MarkConversationRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), unreadFor(alice.ID))

	_, err = messageSvc.SendDirectMessage(ctx, bob.ID, alice.ID, "ping again", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadFor(alice.ID))
}

func TestListConversationsNoFriends(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	svc := NewConversationService(
		storage.NewGormFriendEdgeRepository(db),
		storage.NewGormMessageRepository(db),
		storage.NewGormUserRepository(db),
	)

	conversations, err := svc.ListConversations(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Empty(t, conversations)
	assert.IsType(t, []*models.Conversation{}, conversations)
}
