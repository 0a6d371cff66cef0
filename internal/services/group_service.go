package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"studychat/internal/apperrors"
	"studychat/internal/models"
	"studychat/internal/storage"
)

// GroupUpdate carries the mutable group fields; nil means unchanged.
type GroupUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	AvatarURL   *string `json:"avatar,omitempty"`
}

// GroupService manages groups and their memberships. Any member may
// invite or remove others and update the group; the admin role is
// recorded on the creator but not yet enforced beyond that.
type GroupService interface {
	// CreateGroup creates a group and its membership rows in one
	// transaction. The creator always joins as admin; memberIDs are
	// optional initial members.
	CreateGroup(ctx context.Context, creatorID uint, name, description string, memberIDs []uint) (*models.Group, error)
	GetGroup(ctx context.Context, userID, groupID uint) (*models.Group, error)
	ListGroups(ctx context.Context, userID uint) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, userID, groupID uint, update GroupUpdate) (*models.Group, error)
	// DeleteGroup removes the group, its memberships and its messages
	// in one transaction.
	DeleteGroup(ctx context.Context, userID, groupID uint) error

	AddMember(ctx context.Context, actorID, groupID, userID uint) error
	RemoveMember(ctx context.Context, actorID, groupID, userID uint) error
	ListMembers(ctx context.Context, userID, groupID uint) ([]*models.GroupMemberInfo, error)
}

type groupService struct {
	db        *gorm.DB
	groupRepo storage.GroupRepository
	userRepo  storage.UserRepository
}

// NewGroupService creates a GroupService.
func NewGroupService(db *gorm.DB, groupRepo storage.GroupRepository, userRepo storage.UserRepository) GroupService {
	return &groupService{db: db, groupRepo: groupRepo, userRepo: userRepo}
}

func (s *groupService) CreateGroup(ctx context.Context, creatorID uint, name, description string, memberIDs []uint) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrEmptyGroupName
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		IsActive:    true,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		txRepo := storage.NewGormGroupRepository(tx)
		if err := txRepo.Create(ctx, group); err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		now := time.Now()
		creator := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   creatorID,
			Role:     models.AdminRole,
			JoinedAt: now,
		}
		if err := txRepo.AddMember(ctx, creator); err != nil {
			return fmt.Errorf("failed to add creator: %w", err)
		}
		seen := map[uint]bool{creatorID: true}
		for _, id := range memberIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			member := &models.GroupMember{
				GroupID:  group.ID,
				UserID:   id,
				Role:     models.MemberRole,
				JoinedAt: now,
			}
			if err := txRepo.AddMember(ctx, member); err != nil {
				return fmt.Errorf("failed to add member %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to create group")
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, userID, groupID uint) (*models.Group, error) {
	group, err := s.loadActiveGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *groupService) ListGroups(ctx context.Context, userID uint) ([]*models.Group, error) {
	groups, err := s.groupRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to list groups")
	}
	return groups, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, userID, groupID uint, update GroupUpdate) (*models.Group, error) {
	group, err := s.loadActiveGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.ErrEmptyGroupName
		}
		group.Name = name
	}
	if update.Description != nil {
		group.Description = *update.Description
	}
	if update.AvatarURL != nil {
		group.AvatarURL = *update.AvatarURL
	}
	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, apperrors.InternalWrap(err, "failed to update group")
	}
	return group, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, userID, groupID uint) error {
	if _, err := s.loadActiveGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		txGroupRepo := storage.NewGormGroupRepository(tx)
		txMessageRepo := storage.NewGormMessageRepository(tx)
		if err := txGroupRepo.RemoveAllMembers(ctx, groupID); err != nil {
			return fmt.Errorf("failed to remove members: %w", err)
		}
		if err := txMessageRepo.DeleteByGroup(ctx, groupID); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := txGroupRepo.Delete(ctx, groupID); err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.InternalWrap(err, "failed to delete group")
	}
	return nil
}

func (s *groupService) AddMember(ctx context.Context, actorID, groupID, userID uint) error {
	if _, err := s.loadActiveGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireMembership(ctx, groupID, actorID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return apperrors.InternalWrap(err, "failed to look up user")
	}

	existing, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to check membership")
	}
	if existing != nil {
		return apperrors.ErrDuplicateGroupMember
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     models.MemberRole,
		JoinedAt: time.Now(),
	}
	if err := s.groupRepo.AddMember(ctx, member); err != nil {
		return apperrors.InternalWrap(err, "failed to add member")
	}
	return nil
}

func (s *groupService) RemoveMember(ctx context.Context, actorID, groupID, userID uint) error {
	if _, err := s.loadActiveGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.requireMembership(ctx, groupID, actorID); err != nil {
		return err
	}

	member, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to check membership")
	}
	if member == nil {
		return apperrors.ErrGroupMemberNotFound
	}
	if err := s.groupRepo.RemoveMember(ctx, groupID, userID); err != nil {
		return apperrors.InternalWrap(err, "failed to remove member")
	}
	return nil
}

func (s *groupService) ListMembers(ctx context.Context, userID, groupID uint) ([]*models.GroupMemberInfo, error) {
	if _, err := s.loadActiveGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, groupID, userID); err != nil {
		return nil, err
	}

	members, err := s.groupRepo.ListMembers(ctx, groupID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to list members")
	}
	infos := make([]*models.GroupMemberInfo, 0, len(members))
	for i := range members {
		m := &members[i]
		infos = append(infos, &models.GroupMemberInfo{
			User:     m.User.BasicInfo(),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		})
	}
	return infos, nil
}

func (s *groupService) loadActiveGroup(ctx context.Context, groupID uint) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.InternalWrap(err, "failed to load group")
	}
	if !group.IsActive {
		return nil, apperrors.ErrGroupNotFound
	}
	return group, nil
}

func (s *groupService) requireMembership(ctx context.Context, groupID, userID uint) error {
	member, err := s.groupRepo.GetMember(ctx, groupID, userID)
	if err != nil {
		return apperrors.InternalWrap(err, "failed to check membership")
	}
	if member == nil {
		return apperrors.ErrNotGroupMember
	}
	return nil
}
