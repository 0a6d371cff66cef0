package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"studychat/internal/apperrors"
	"studychat/internal/models"
	"studychat/internal/storage"
)

// UserService exposes the user lookups this subsystem needs. Account
// management lives elsewhere.
type UserService interface {
	GetBasicInfo(ctx context.Context, userID uint) (*models.UserBasicInfo, error)
	// SearchUsers finds users by username or display name substring,
	// excluding the caller. An empty query returns all other active
	// users, capped by the repository limit.
	SearchUsers(ctx context.Context, callerID uint, query string) ([]*models.UserBasicInfo, error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a UserService.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetBasicInfo(ctx context.Context, userID uint) (*models.UserBasicInfo, error) {
	info, err := s.userRepo.GetBasicInfoByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalWrap(err, "failed to load user")
	}
	return info, nil
}

func (s *userService) SearchUsers(ctx context.Context, callerID uint, query string) ([]*models.UserBasicInfo, error) {
	users, err := s.userRepo.Search(ctx, strings.TrimSpace(query), callerID)
	if err != nil {
		return nil, apperrors.InternalWrap(err, "failed to search users")
	}
	return users, nil
}
