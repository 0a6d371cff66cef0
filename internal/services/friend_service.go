package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studychat/internal/apperrors"
	"studychat/internal/events"
	"studychat/internal/models"
	"studychat/internal/storage"
)

// FriendService implements the friend-request state machine over
// directional edges. Only four states exist between two users: no
// edges, one pending edge (either direction), or a mirrored accepted
// pair. Every transition validates the current state first, so the
// operations are safe to retry.
type FriendService interface {
	// SendRequest creates a pending edge from requester to target and
	// notifies the target.
	SendRequest(ctx context.Context, requesterID, targetID uint) (*models.FriendEdge, error)
	// AcceptRequest accepts the pending request from requesterID
	// addressed to accepterID, writing the mirrored accepted pair in one
	// transaction.
	AcceptRequest(ctx context.Context, accepterID, requesterID uint) (*models.FriendEdge, error)
	// RejectRequest deletes the pending request from requesterID
	// addressed to rejecterID. The requester is not notified.
	RejectRequest(ctx context.Context, rejecterID, requesterID uint) error
	// CancelRequest withdraws the caller's own pending request to
	// targetID.
	CancelRequest(ctx context.Context, callerID, targetID uint) error
	// RemoveFriend deletes both accepted edges between the two users.
	RemoveFriend(ctx context.Context, callerID, friendID uint) error
	// ListFriends returns the caller's accepted friends.
	ListFriends(ctx context.Context, userID uint) ([]*models.FriendInfo, error)
	// ListReceivedRequests returns pending requests addressed to the caller.
	ListReceivedRequests(ctx context.Context, userID uint) ([]*models.FriendInfo, error)
	// ListSentRequests returns the caller's own pending requests.
	ListSentRequests(ctx context.Context, userID uint) ([]*models.FriendInfo, error)
	// ListAllRelations returns every relation the caller participates in.
	ListAllRelations(ctx context.Context, userID uint) ([]*models.FriendInfo, error)
	// RelationshipStatus reports the relation between the caller and
	// another user from the caller's point of view.
	RelationshipStatus(ctx context.Context, userID, otherID uint) (models.RelationStatus, error)
}

type friendService struct {
	db        *gorm.DB
	edgeRepo  storage.FriendEdgeRepository
	userRepo  storage.UserRepository
	publisher events.Publisher
}

// NewFriendService creates a FriendService.
func NewFriendService(db *gorm.DB, edgeRepo storage.FriendEdgeRepository, userRepo storage.UserRepository, publisher events.Publisher) FriendService {
	return &friendService{db: db, edgeRepo: edgeRepo, userRepo: userRepo, publisher: publisher}
}

func (s *friendService) SendRequest(ctx context.Context, requesterID, targetID uint) (*models.FriendEdge, error) {
	if requesterID == targetID {
		return nil, apperrors.ErrSelfFriendRequest
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalWrap(err, "failed to look up user")
	}

	existing, err := s.edgeRepo.FindBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to check existing relation")
	}
	for i := range existing {
		switch existing[i].Status {
		case models.EdgeAccepted:
			return nil, apperrors.ErrAlreadyFriends
		case models.EdgePending:
			return nil, apperrors.ErrFriendRequestExists
		}
	}

	edge := &models.FriendEdge{
		OwnerID: requesterID,
		PeerID:  targetID,
		Status:  models.EdgePending,
	}
	if err := s.edgeRepo.Create(ctx, edge); err != nil {
		return nil, apperrors.InternalWrap(err, "failed to create friend request")
	}

	if requester, err := s.userRepo.GetBasicInfoByID(ctx, requesterID); err == nil {
		publishNotification(ctx, s.publisher, events.EventFriendRequestReceived, "", []uint{targetID},
			events.FriendRequestPayload{Requester: requester})
	}
	return edge, nil
}

func (s *friendService) AcceptRequest(ctx context.Context, accepterID, requesterID uint) (*models.FriendEdge, error) {
	pending, err := s.edgeRepo.FindPending(ctx, requesterID, accepterID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to look up friend request")
	}
	if pending == nil {
		return nil, apperrors.ErrFriendRequestNotFound
	}

	mirror := &models.FriendEdge{
		OwnerID: accepterID,
		PeerID:  requesterID,
		Status:  models.EdgeAccepted,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := storage.NewGormFriendEdgeRepository(tx)
		if err := txRepo.UpdateStatus(ctx, pending.ID, models.EdgeAccepted); err != nil {
			return fmt.Errorf("failed to accept edge: %w", err)
		}
		if err := txRepo.Create(ctx, mirror); err != nil {
			return fmt.Errorf("failed to create mirrored edge: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to accept friend request")
	}
	pending.Status = models.EdgeAccepted

	// Both parties learn about the new friendship; each payload carries
	// the other side's identity.
	accepter, aerr := s.userRepo.GetBasicInfoByID(ctx, accepterID)
	requester, rerr := s.userRepo.GetBasicInfoByID(ctx, requesterID)
	if aerr == nil {
		publishNotification(ctx, s.publisher, events.EventFriendRequestAccepted, "", []uint{requesterID},
			events.FriendAcceptedPayload{Friend: accepter})
	}
	if rerr == nil {
		publishNotification(ctx, s.publisher, events.EventFriendRequestAccepted, "", []uint{accepterID},
			events.FriendAcceptedPayload{Friend: requester})
	}
	return pending, nil
}

func (s *friendService) RejectRequest(ctx context.Context, rejecterID, requesterID uint) error {
	pending, err := s.edgeRepo.FindPending(ctx, requesterID, rejecterID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to look up friend request")
	}
	if pending == nil {
		return apperrors.ErrFriendRequestNotFound
	}
	if err := s.edgeRepo.Delete(ctx, pending.ID); err != nil {
		return apperrors.InternalWrap(err, "failed to reject friend request")
	}
	return nil
}

func (s *friendService) CancelRequest(ctx context.Context, callerID, targetID uint) error {
	edges, err := s.edgeRepo.FindBetween(ctx, callerID, targetID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to look up friend request")
	}
	var pending *models.FriendEdge
	for i := range edges {
		if edges[i].Status == models.EdgePending {
			pending = &edges[i]
			break
		}
	}
	if pending == nil {
		return apperrors.ErrFriendRequestNotFound
	}
	if pending.OwnerID != callerID {
		return apperrors.ErrNotRequestOwner
	}
	if err := s.edgeRepo.Delete(ctx, pending.ID); err != nil {
		return apperrors.InternalWrap(err, "failed to cancel friend request")
	}
	return nil
}

func (s *friendService) RemoveFriend(ctx context.Context, callerID, friendID uint) error {
	edges, err := s.edgeRepo.FindBetween(ctx, callerID, friendID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to look up friendship")
	}
	accepted := false
	for i := range edges {
		if edges[i].Status == models.EdgeAccepted {
			accepted = true
			break
		}
	}
	if !accepted {
		return apperrors.ErrNotFriends
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := storage.NewGormFriendEdgeRepository(tx)
		return txRepo.DeletePair(ctx, callerID, friendID, models.EdgeAccepted)
	})
	if err != nil {
		return apperrors.InternalWrap(err, "failed to remove friend")
	}
	return nil
}

func (s *friendService) ListFriends(ctx context.Context, userID uint) ([]*models.FriendInfo, error) {
	edges, err := s.edgeRepo.ListByOwner(ctx, userID, models.EdgeAccepted)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to list friends")
	}
	return s.edgesToInfos(ctx, edges, models.RelationAccepted, func(e *models.FriendEdge) uint { return e.PeerID })
}

func (s *friendService) ListReceivedRequests(ctx context.Context, userID uint) ([]*models.FriendInfo, error) {
	edges, err := s.edgeRepo.ListByPeer(ctx, userID, models.EdgePending)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to list received requests")
	}
	return s.edgesToInfos(ctx, edges, models.RelationReceived, func(e *models.FriendEdge) uint { return e.OwnerID })
}

func (s *friendService) ListSentRequests(ctx context.Context, userID uint) ([]*models.FriendInfo, error) {
	edges, err := s.edgeRepo.ListByOwner(ctx, userID, models.EdgePending)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to list sent requests")
	}
	return s.edgesToInfos(ctx, edges, models.RelationSent, func(e *models.FriendEdge) uint { return e.PeerID })
}

func (s *friendService) ListAllRelations(ctx context.Context, userID uint) ([]*models.FriendInfo, error) {
	friends, err := s.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	received, err := s.ListReceivedRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	sent, err := s.ListSentRequests(ctx, userID)
	if err != nil {
		return nil, err
	}
	all := make([]*models.FriendInfo, 0, len(friends)+len(received)+len(sent))
	all = append(all, friends...)
	all = append(all, received...)
	all = append(all, sent...)
	return all, nil
}

func (s *friendService) RelationshipStatus(ctx context.Context, userID, otherID uint) (models.RelationStatus, error) {
	edges, err := s.edgeRepo.FindBetween(ctx, userID, otherID)
	if err != nil {
		return "", apperrors.InternalWrap(err, "failed to look up relation")
	}
	for i := range edges {
		e := &edges[i]
		switch e.Status {
		case models.EdgeAccepted:
			return models.RelationAccepted, nil
		case models.EdgePending:
			if e.OwnerID == userID {
				return models.RelationSent, nil
			}
			return models.RelationReceived, nil
		}
	}
	return models.RelationNone, nil
}

// edgesToInfos resolves the peer side of each edge to user identity.
// Users that no longer resolve (deactivated, deleted) are skipped rather
// than failing the whole listing.
func (s *friendService) edgesToInfos(ctx context.Context, edges []models.FriendEdge, status models.RelationStatus, peerOf func(*models.FriendEdge) uint) ([]*models.FriendInfo, error) {
	if len(edges) == 0 {
		return []*models.FriendInfo{}, nil
	}
	ids := make([]uint, 0, len(edges))
	for i := range edges {
		ids = append(ids, peerOf(&edges[i]))
	}
	users, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to resolve users")
	}
	byID := make(map[uint]*models.UserBasicInfo, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	infos := make([]*models.FriendInfo, 0, len(edges))
	for i := range edges {
		if u, ok := byID[peerOf(&edges[i])]; ok {
			infos = append(infos, &models.FriendInfo{User: u, Status: status})
		}
	}
	return infos, nil
}
