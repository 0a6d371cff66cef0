package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// GroupRepository defines data access for groups and their memberships.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error
	GetByID(ctx context.Context, groupID uint) (*models.Group, error)
	Update(ctx context.Context, group *models.Group) error
	Delete(ctx context.Context, groupID uint) error
	ListForUser(ctx context.Context, userID uint) ([]*models.Group, error)

	AddMember(ctx context.Context, member *models.GroupMember) error
	// GetMember returns the membership row, or nil when userID is not a
	// member of the group.
	GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID uint) error
	RemoveAllMembers(ctx context.Context, groupID uint) error
	ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error)
}

type gormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a GroupRepository backed by gorm.
func NewGormGroupRepository(db *gorm.DB) GroupRepository {
	return &gormGroupRepository{db: db}
}

func (r *gormGroupRepository) Create(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *gormGroupRepository) GetByID(ctx context.Context, groupID uint) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, groupID).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *gormGroupRepository) Update(ctx context.Context, group *models.Group) error {
	return r.db.WithContext(ctx).Save(group).Error
}

func (r *gormGroupRepository) Delete(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).Delete(&models.Group{}, groupID).Error
}

func (r *gormGroupRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ? AND group_members.deleted_at IS NULL", userID).
		Where("groups.is_active = ?", true).
		Find(&groups).Error
	return groups, err
}

func (r *gormGroupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *gormGroupRepository) GetMember(ctx context.Context, groupID, userID uint) (*models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *gormGroupRepository) RemoveMember(ctx context.Context, groupID, userID uint) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{}).Error
}

func (r *gormGroupRepository) RemoveAllMembers(ctx context.Context, groupID uint) error {
	return r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&models.GroupMember{}).Error
}

func (r *gormGroupRepository) ListMembers(ctx context.Context, groupID uint) ([]models.GroupMember, error) {
	var members []models.GroupMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}
