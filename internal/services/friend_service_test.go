package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studychat/internal/apperrors"
	"studychat/internal/events"
	"studychat/internal/models"
	"studychat/internal/storage"
)

func newFriendFixture(t *testing.T) (FriendService, *fakePublisher, *models.User, *models.User, storage.FriendEdgeRepository) {
	t.Helper()
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	bob := createTestUser(t, db, "bob", "Bob")
	edgeRepo := storage.NewGormFriendEdgeRepository(db)
	userRepo := storage.NewGormUserRepository(db)
	publisher := &fakePublisher{}
	svc := NewFriendService(db, edgeRepo, userRepo, publisher)
	return svc, publisher, alice, bob, edgeRepo
}

func TestSendRequest(t *testing.T) {
	svc, publisher, alice, bob, _ := newFriendFixture(t)
	ctx := context.Background()

	edge, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, edge.OwnerID)
	assert.Equal(t, bob.ID, edge.PeerID)
	assert.Equal(t, models.EdgePending, edge.Status)

	notifications := publisher.byEvent(events.EventFriendRequestReceived)
	require.Len(t, notifications, 1)
	assert.Equal(t, []uint{bob.ID}, notifications[0].UserIDs)
	assert.Empty(t, notifications[0].Room)
}

func TestSendRequestToSelf(t *testing.T) {
	svc, _, alice, _, _ := newFriendFixture(t)

	_, err := svc.SendRequest(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrSelfFriendRequest)
}

func TestSendRequestUnknownUser(t *testing.T) {
	svc, _, alice, _, _ := newFriendFixture(t)

	_, err := svc.SendRequest(context.Background(), alice.ID, 9999)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSendRequestDuplicate(t *testing.T) {
	svc, _, alice, bob, _ := newFriendFixture(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.SendRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendRequestExists)

	// The reverse direction collides with the same pending edge.
	_, err = svc.SendRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendRequestExists)
}

func TestAcceptRequestWritesMirroredPair(t *testing.T) {
	svc, publisher, alice, bob, edgeRepo := newFriendFixture(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	edge, err := svc.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EdgeAccepted, edge.Status)

	edges, err := edgeRepo.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	owners := map[uint]models.EdgeStatus{}
	for _, e := range edges {
		owners[e.OwnerID] = e.Status
	}
	assert.Equal(t, models.EdgeAccepted, owners[alice.ID])
	assert.Equal(t, models.EdgeAccepted, owners[bob.ID])

	// Both parties are told, each about the other.
	notifications := publisher.byEvent(events.EventFriendRequestAccepted)
	require.Len(t, notifications, 2)

	// Friendship shows up from both sides.
	status, err := svc.RelationshipStatus(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RelationAccepted, status)
	status, err = svc.RelationshipStatus(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RelationAccepted, status)
}

func TestAcceptRequestWithoutPending(t *testing.T) {
	svc, _, alice, bob, _ := newFriendFixture(t)

	_, err := svc.AcceptRequest(context.Background(), bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendRequestNotFound)
}

func TestAcceptRequestWrongDirection(t *testing.T) {
	svc, _, alice, bob, _ := newFriendFixture(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// The requester cannot accept their own request.
	_, err = svc.AcceptRequest(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendRequestNotFound)
}

func TestRejectRequest(t *testing.T) {
	svc, _, alice, bob, edgeRepo := newFriendFixture(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RejectRequest(ctx, bob.ID, alice.ID))

	edges, err := edgeRepo.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)

	// Rejecting again finds nothing.
	err = svc.RejectRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrFriendRequestNotFound)
}

func TestCancelRequest(t *testing.T) {
	svc, _, alice, bob, edgeRepo := newFriendFixture(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Only the sender may withdraw.
	err = svc.CancelRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotRequestOwner)

	require.NoError(t, svc.CancelRequest(ctx, alice.ID, bob.ID))

	edges, err := edgeRepo.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestRemoveFriendDeletesBothRows(t *testing.T) {
	svc, _, alice, bob, edgeRepo := newFriendFixture(t)
	ctx := context.Background()

	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFriend(ctx, bob.ID, alice.ID))

	edges, err := edgeRepo.FindBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, edges)

	status, err := svc.RelationshipStatus(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RelationNone, status)
}

func TestRemoveFriendNotFriends(t *testing.T) {
	svc, _, alice, bob, _ := newFriendFixture(t)

	err := svc.RemoveFriend(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFriends)
}

func TestFriendLists(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	bob := createTestUser(t, db, "bob", "Bob")
	carol := createTestUser(t, db, "carol", "Carol")
	dave := createTestUser(t, db, "dave", "Dave")
	svc := NewFriendService(db, storage.NewGormFriendEdgeRepository(db), storage.NewGormUserRepository(db), &fakePublisher{})
	ctx := context.Background()

	// alice <-> bob accepted, alice -> carol pending, dave -> alice pending.
	_, err := svc.SendRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.AcceptRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, dave.ID, alice.ID)
	require.NoError(t, err)

	friends, err := svc.ListFriends(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].User.ID)
	assert.Equal(t, models.RelationAccepted, friends[0].Status)

	received, err := svc.ListReceivedRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, dave.ID, received[0].User.ID)
	assert.Equal(t, models.RelationReceived, received[0].Status)

	sent, err := svc.ListSentRequests(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, carol.ID, sent[0].User.ID)
	assert.Equal(t, models.RelationSent, sent[0].Status)

	all, err := svc.ListAllRelations(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	status, err := svc.RelationshipStatus(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RelationReceived, status)
}

func TestSendRequestSurvivesPublishFailure(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "Alice")
	bob := createTestUser(t, db, "bob", "Bob")
	publisher := &fakePublisher{err: assert.AnError}
	svc := NewFriendService(db, storage.NewGormFriendEdgeRepository(db), storage.NewGormUserRepository(db), publisher)

	edge, err := svc.SendRequest(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.NotZero(t, edge.ID)
}
