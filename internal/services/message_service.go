package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"studychat/internal/apperrors"
	"studychat/internal/events"
	"studychat/internal/models"
	"studychat/internal/storage"
)

// MessageService persists direct and group messages and fans out the
// realtime notifications. Persist first, notify after: a message that
// reached the store is delivered to offline users on their next history
// fetch even when the realtime leg is lost.
type MessageService interface {
	SendDirectMessage(ctx context.Context, senderID, receiverID uint, content string, msgType models.MessageType) (*models.Message, error)
	SendGroupMessage(ctx context.Context, senderID, groupID uint, content string, msgType models.MessageType) (*models.Message, error)
	// GetDirectHistory returns the full history between two users,
	// oldest first.
	GetDirectHistory(ctx context.Context, userID, friendID uint) ([]*models.Message, error)
	// GetGroupHistory returns a group's history, oldest first. The
	// caller must be a member.
	GetGroupHistory(ctx context.Context, userID, groupID uint) ([]*models.Message, error)
	// MarkConversationRead marks every unread message from senderID to
	// readerID as read and returns how many changed. Zero is a normal
	// outcome.
	MarkConversationRead(ctx context.Context, readerID, senderID uint) (int64, error)
}

type messageService struct {
	messageRepo storage.MessageRepository
	groupRepo   storage.GroupRepository
	publisher   events.Publisher
}

// NewMessageService creates a MessageService.
func NewMessageService(messageRepo storage.MessageRepository, groupRepo storage.GroupRepository, publisher events.Publisher) MessageService {
	return &messageService{messageRepo: messageRepo, groupRepo: groupRepo, publisher: publisher}
}

func normalizeMessage(content string, msgType models.MessageType) (string, models.MessageType, error) {
	if strings.TrimSpace(content) == "" {
		return "", "", apperrors.ErrEmptyMessageContent
	}
	if msgType == "" {
		msgType = models.TextMessage
	}
	return content, msgType, nil
}

func (s *messageService) SendDirectMessage(ctx context.Context, senderID, receiverID uint, content string, msgType models.MessageType) (*models.Message, error) {
	content, msgType, err := normalizeMessage(content, msgType)
	if err != nil {
		return nil, err
	}
	if receiverID == 0 || receiverID == senderID {
		return nil, apperrors.ErrMessageTarget
	}

	message := &models.Message{
		SenderID:   senderID,
		ReceiverID: &receiverID,
		Type:       msgType,
		Content:    content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, apperrors.InternalWrap(err, "failed to store message")
	}

	publishNotification(ctx, s.publisher, events.EventNewMessage,
		events.DirectRoom(senderID, receiverID), nil, message)
	return message, nil
}

func (s *messageService) SendGroupMessage(ctx context.Context, senderID, groupID uint, content string, msgType models.MessageType) (*models.Message, error) {
	content, msgType, err := normalizeMessage(content, msgType)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, groupID, senderID); err != nil {
		return nil, err
	}

	message := &models.Message{
		SenderID: senderID,
		GroupID:  &groupID,
		Type:     msgType,
		Content:  content,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, apperrors.InternalWrap(err, "failed to store message")
	}

	publishNotification(ctx, s.publisher, events.EventNewMessage,
		events.GroupRoom(groupID), nil, message)
	return message, nil
}

func (s *messageService) GetDirectHistory(ctx context.Context, userID, friendID uint) ([]*models.Message, error) {
	messages, err := s.messageRepo.ListDirect(ctx, userID, friendID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to load messages")
	}
	return messages, nil
}

func (s *messageService) GetGroupHistory(ctx context.Context, userID, groupID uint) ([]*models.Message, error) {
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	messages, err := s.messageRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to load messages")
	}
	return messages, nil
}

func (s *messageService) MarkConversationRead(ctx context.Context, readerID, senderID uint) (int64, error) {
	updated, err := s.messageRepo.MarkRead(ctx, senderID, readerID)
	if err != nil {
		return 0, apperrors.InternalWrap(err, "failed to mark messages read")
	}
	return updated, nil
}

func (s *messageService) requireMembership(ctx context.Context, groupID, userID uint) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGroupNotFound
		}
		return apperrors.InternalWrap(err, "failed to load group")
	}
	if !group.IsActive {
		return apperrors.ErrGroupNotFound
	}
	member, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to check membership")
	}
	if member == nil {
		return apperrors.ErrNotGroupMember
	}
	return nil
}
