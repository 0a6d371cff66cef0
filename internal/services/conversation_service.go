package services

import (
	"context"
	"sort"

	"studychat/internal/apperrors"
	"studychat/internal/models"
	"studychat/internal/storage"
)

// ConversationService derives the conversation overview. Nothing is
// stored: the list is computed from the friend graph and the message
// table on every call, so it can never drift from either.
type ConversationService interface {
	// ListConversations returns one entry per accepted friend, newest
	// activity first; friends with no history sort last.
	ListConversations(ctx context.Context, userID uint) ([]*models.Conversation, error)
}

type conversationService struct {
	edgeRepo    storage.FriendEdgeRepository
	messageRepo storage.MessageRepository
	userRepo    storage.UserRepository
}

// NewConversationService creates a ConversationService.
func NewConversationService(edgeRepo storage.FriendEdgeRepository, messageRepo storage.MessageRepository, userRepo storage.UserRepository) ConversationService {
	return &conversationService{edgeRepo: edgeRepo, messageRepo: messageRepo, userRepo: userRepo}
}

func (s *conversationService) ListConversations(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	edges, err := s.edgeRepo.ListByOwner(ctx, userID, models.EdgeAccepted)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to list friends")
	}
	if len(edges) == 0 {
		return []*models.Conversation{}, nil
	}

	friendIDs := make([]uint, 0, len(edges))
	for i := range edges {
		friendIDs = append(friendIDs, edges[i].PeerID)
	}
	users, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, friendIDs)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to resolve users")
	}

	conversations := make([]*models.Conversation, 0, len(users))
	for _, friend := range users {
		last, err := s.messageRepo.LatestDirect(ctx, userID, friend.ID)
		if err != nil {
			return nil, apperrors.InternalWrap(err, "failed to load last message")
		}
		unread, err := s.messageRepo.CountUnread(ctx, friend.ID, userID)
		if err != nil {
			return nil, apperrors.InternalWrap(err, "failed to count unread messages")
		}
		conversations = append(conversations, &models.Conversation{
			User:        friend,
			LastMessage: last,
			UnreadCount: unread,
		})
	}

	// Most recent activity first; empty conversations sink to the end.
	sort.SliceStable(conversations, func(i, j int) bool {
		a, b := conversations[i].LastMessage, conversations[j].LastMessage
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})
	return conversations, nil
}
