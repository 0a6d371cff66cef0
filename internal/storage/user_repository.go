package storage

import (
	"context"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// searchLimit bounds user search results; the search endpoint does not
// expose caller-facing pagination.
const searchLimit = 50

// UserRepository defines read access to the shared users table.
type UserRepository interface {
	GetByID(ctx context.Context, userID uint) (*models.User, error)
	GetBasicInfoByID(ctx context.Context, userID uint) (*models.UserBasicInfo, error)
	GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error)
	Search(ctx context.Context, query string, excludeUserID uint) ([]*models.UserBasicInfo, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a UserRepository backed by gorm.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetBasicInfoByID(ctx context.Context, userID uint) (*models.UserBasicInfo, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.BasicInfo(), nil
}

func (r *gormUserRepository) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	if len(userIDs) == 0 {
		return []*models.UserBasicInfo{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]*models.UserBasicInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].BasicInfo())
	}
	return infos, nil
}

// Search matches the query as a substring of username or display name,
// always excluding the given user. An empty query matches every active
// user.
func (r *gormUserRepository) Search(ctx context.Context, query string, excludeUserID uint) ([]*models.UserBasicInfo, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id <> ? AND is_active = ?", excludeUserID, true)
	if query != "" {
		pattern := "%" + query + "%"
		tx = tx.Where("username LIKE ? OR name LIKE ?", pattern, pattern)
	}

	var users []models.User
	if err := tx.Order("username").Limit(searchLimit).Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]*models.UserBasicInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].BasicInfo())
	}
	return infos, nil
}
