package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"studychat/internal/models"
)

// FriendEdgeRepository defines data access for directional friend
// edges. Pure data access; the state-machine policy lives in the friend
// service.
type FriendEdgeRepository interface {
	Create(ctx context.Context, edge *models.FriendEdge) error
	// FindBetween returns every edge between the two users, in either
	// direction and any status.
	FindBetween(ctx context.Context, userA, userB uint) ([]models.FriendEdge, error)
	// FindPending returns the pending edge owned by ownerID and
	// addressed to peerID, or nil when there is none.
	FindPending(ctx context.Context, ownerID, peerID uint) (*models.FriendEdge, error)
	UpdateStatus(ctx context.Context, edgeID uint, status models.EdgeStatus) error
	Delete(ctx context.Context, edgeID uint) error
	// DeletePair removes both directional rows with the given status
	// between the two users.
	DeletePair(ctx context.Context, userA, userB uint, status models.EdgeStatus) error
	ListByOwner(ctx context.Context, ownerID uint, status models.EdgeStatus) ([]models.FriendEdge, error)
	ListByPeer(ctx context.Context, peerID uint, status models.EdgeStatus) ([]models.FriendEdge, error)
}

type gormFriendEdgeRepository struct {
	db *gorm.DB
}

// NewGormFriendEdgeRepository creates a FriendEdgeRepository backed by gorm.
func NewGormFriendEdgeRepository(db *gorm.DB) FriendEdgeRepository {
	return &gormFriendEdgeRepository{db: db}
}

func (r *gormFriendEdgeRepository) Create(ctx context.Context, edge *models.FriendEdge) error {
	return r.db.WithContext(ctx).Create(edge).Error
}

func (r *gormFriendEdgeRepository) FindBetween(ctx context.Context, userA, userB uint) ([]models.FriendEdge, error) {
	var edges []models.FriendEdge
	err := r.db.WithContext(ctx).
		Where("(owner_id = ? AND peer_id = ?) OR (owner_id = ? AND peer_id = ?)", userA, userB, userB, userA).
		Find(&edges).Error
	return edges, err
}

func (r *gormFriendEdgeRepository) FindPending(ctx context.Context, ownerID, peerID uint) (*models.FriendEdge, error) {
	var edge models.FriendEdge
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND peer_id = ? AND status = ?", ownerID, peerID, models.EdgePending).
		First(&edge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // absence is not an error here
		}
		return nil, err
	}
	return &edge, nil
}

func (r *gormFriendEdgeRepository) UpdateStatus(ctx context.Context, edgeID uint, status models.EdgeStatus) error {
	return r.db.WithContext(ctx).Model(&models.FriendEdge{}).
		Where("id = ?", edgeID).
		Update("status", status).Error
}

func (r *gormFriendEdgeRepository) Delete(ctx context.Context, edgeID uint) error {
	return r.db.WithContext(ctx).Delete(&models.FriendEdge{}, edgeID).Error
}

func (r *gormFriendEdgeRepository) DeletePair(ctx context.Context, userA, userB uint, status models.EdgeStatus) error {
	return r.db.WithContext(ctx).
		Where("((owner_id = ? AND peer_id = ?) OR (owner_id = ? AND peer_id = ?)) AND status = ?",
			userA, userB, userB, userA, status).
		Delete(&models.FriendEdge{}).Error
}

func (r *gormFriendEdgeRepository) ListByOwner(ctx context.Context, ownerID uint, status models.EdgeStatus) ([]models.FriendEdge, error) {
	var edges []models.FriendEdge
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND status = ?", ownerID, status).
		Find(&edges).Error
	return edges, err
}

func (r *gormFriendEdgeRepository) ListByPeer(ctx context.Context, peerID uint, status models.EdgeStatus) ([]models.FriendEdge, error) {
	var edges []models.FriendEdge
	err := r.db.WithContext(ctx).
		Where("peer_id = ? AND status = ?", peerID, status).
		Find(&edges).Error
	return edges, err
}
