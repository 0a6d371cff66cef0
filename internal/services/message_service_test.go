package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/apperrors"
	"studychat/internal/events"
	"studychat/internal/models"
	"studychat/internal/storage"
)

func newMessageFixture(t *testing.T) (MessageService, GroupService, *fakePublisher, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	bob := createTestUser(t, db, "bob", "Bob")
	publisher := &fakePublisher{}
	messageRepo := storage.NewGormMessageRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	userRepo := storage.NewGormUserRepository(db)
	msgSvc := NewMessageService(messageRepo, groupRepo, publisher)
	groupSvc := NewGroupService(db, groupRepo, userRepo)
	return msgSvc, groupSvc, publisher, alice, bob
}

func TestSendDirectMessage(t *testing.T) {
	svc, _, publisher, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	message, err := svc.SendDirectMessage(ctx, alice.ID, bob.ID, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, message.SenderID)
	require.NotNil(t, message.ReceiverID)
	assert.Equal(t, bob.ID, *message.ReceiverID)
	assert.Nil(t, message.GroupID)
	assert.Equal(t, models.TextMessage, message.Type)
	assert.False(t, message.IsRead)

	notifications := publisher.byEvent(events.EventNewMessage)
	require.Len(t, notifications, 1)
	assert.Equal(t, events.DirectRoom(alice.ID, bob.ID), notifications[0].Room)

	var delivered models.Message
	require.NoError(t, json.Unmarshal(notifications[0].Payload, &delivered))
	assert.Equal(t, "hello", delivered.Content)
}

func TestSendDirectMessageValidation(t *testing.T) {
	svc, _, _, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.SendDirectMessage(ctx, alice.ID, bob.ID, "   ", "")
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessageContent)

	_, err = svc.SendDirectMessage(ctx, alice.ID, alice.ID, "hi", "")
	assert.ErrorIs(t, err, apperrors.ErrMessageTarget)

	_, err = svc.SendDirectMessage(ctx, alice.ID, 0, "hi", "")
	assert.ErrorIs(t, err, apperrors.ErrMessageTarget)
}

func TestDirectHistoryOrder(t *testing.T) {
	svc, _, _, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		_, err := svc.SendDirectMessage(ctx, alice.ID, bob.ID, content, "")
		require.NoError(t, err)
	}
	_, err := svc.SendDirectMessage(ctx, bob.ID, alice.ID, "four", "")
	require.NoError(t, err)

	history, err := svc.GetDirectHistory(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "one", history[0].Content)
	assert.Equal(t, "four", history[3].Content)
}

func TestSendGroupMessage(t *testing.T) {
	svc, groupSvc, publisher, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	group, err := groupSvc.CreateGroup(ctx, alice.ID, "study", "", []uint{bob.ID})
	require.NoError(t, err)

	message, err := svc.SendGroupMessage(ctx, bob.ID, group.ID, "hi all", models.TextMessage)
	require.NoError(t, err)
	require.NotNil(t, message.GroupID)
	assert.Equal(t, group.ID, *message.GroupID)
	assert.Nil(t, message.ReceiverID)

	notifications := publisher.byEvent(events.EventNewMessage)
	require.Len(t, notifications, 1)
	assert.Equal(t, events.GroupRoom(group.ID), notifications[0].Room)

	history, err := svc.GetGroupHistory(ctx, alice.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi all", history[0].Content)
}

func TestSendGroupMessageNonMember(t *testing.T) {
	svc, groupSvc, _, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	group, err := groupSvc.CreateGroup(ctx, alice.ID, "study", "", nil)
	require.NoError(t, err)

	_, err = svc.SendGroupMessage(ctx, bob.ID, group.ID, "hi", "")
	assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)

	_, err = svc.GetGroupHistory(ctx, bob.ID, group.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotGroupMember)
}

func TestSendGroupMessageUnknownGroup(t *testing.T) {
	svc, _, _, alice, _ := newMessageFixture(t)

	_, err := svc.SendGroupMessage(context.Background(), alice.ID, 404, "hi", "")
	assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
}

func TestMarkConversationRead(t *testing.T) {
	svc, _, _, alice, bob := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.SendDirectMessage(ctx, alice.ID, bob.ID, "one", "")
	require.NoError(t, err)
	_, err = svc.SendDirectMessage(ctx, alice.ID, bob.ID, "two", "")
	require.NoError(t, err)

	updated, err := svc.MarkConversationRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// Idempotent; nothing left to flip.
	updated, err = svc.MarkConversationRead(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}
