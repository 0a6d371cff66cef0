package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// MessageRepository defines data access for direct and group messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListDirect returns the full direct history between two users in
	// both directions, ascending by creation time.
	ListDirect(ctx context.Context, userA, userB uint) ([]*models.Message, error)
	ListByGroup(ctx context.Context, groupID uint) ([]*models.Message, error)
	// LatestDirect returns the most recent direct message between two
	// users, or nil when they have no history.
	LatestDirect(ctx context.Context, userA, userB uint) (*models.Message, error)
	// CountUnread counts unread direct messages from senderID to receiverID.
	CountUnread(ctx context.Context, senderID, receiverID uint) (int64, error)
	// MarkRead flips every unread direct message from senderID to
	// receiverID to read and returns how many rows changed.
	MarkRead(ctx context.Context, senderID, receiverID uint) (int64, error)
	DeleteByGroup(ctx context.Context, groupID uint) error
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a MessageRepository backed by gorm.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *gormMessageRepository) directScope(userA, userB uint) *gorm.DB {
	return r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA)
}

func (r *gormMessageRepository) ListDirect(ctx context.Context, userA, userB uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.directScope(userA, userB).WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) ListByGroup(ctx context.Context, groupID uint) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *gormMessageRepository) LatestDirect(ctx context.Context, userA, userB uint) (*models.Message, error) {
	var message models.Message
	err := r.directScope(userA, userB).WithContext(ctx).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

func (r *gormMessageRepository) CountUnread(ctx context.Context, senderID, receiverID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Count(&count).Error
	return count, err
}

func (r *gormMessageRepository) MarkRead(ctx context.Context, senderID, receiverID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND is_read = ?", senderID, receiverID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (r *gormMessageRepository) DeleteByGroup(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.Message{}).Error
}
