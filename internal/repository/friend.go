package repository

import (
	"context"
	"errors"

	"parley/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRequestRepository defines persistence operations for friend requests
// and the derived friend graph. It is the only writer of the user_friends
// join table.
type FriendRequestRepository interface {
	Create(ctx context.Context, request *models.FriendRequest) error
	GetByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	PendingBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	Accept(ctx context.Context, id uint) error
	Reject(ctx context.Context, id uint) error
	IsFriend(ctx context.Context, userID, otherID uint) (bool, error)
	ListFriends(ctx context.Context, userID uint) ([]models.User, error)
}

type friendRequestRepository struct {
	db *gorm.DB
}

// NewFriendRequestRepository returns a new FriendRequestRepository.
func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

func (r *friendRequestRepository) Create(ctx context.Context, request *models.FriendRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Friend request already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendRequestRepository) GetByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Recipient").
		First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friend request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

// PendingBetween finds an unresolved request between two users in either
// direction. Returns (nil, nil) when none exists.
func (r *friendRequestRepository) PendingBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var request models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.FriendRequestStatusPending).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID1, userID2, userID2, userID1).
		First(&request).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &request, nil
}

func (r *friendRequestRepository) ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Preload("Sender").
		Order("created_at").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *friendRequestRepository) ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Preload("Recipient").
		Order("created_at").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

// Accept resolves a pending request and makes the two users friends. The
// status flip and both friend-set insertions happen in one transaction; the
// flip is a compare-and-set on status so concurrent accept/reject attempts
// resolve the request exactly once.
func (r *friendRequestRepository) Accept(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FriendRequest
		if err := tx.First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Friend request", id)
			}
			return models.NewInternalError(err)
		}

		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", id, models.FriendRequestStatusPending).
			Update("status", models.FriendRequestStatusAccepted)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Friend request already resolved")
		}

		// Symmetric insertion into both friend sets. ON CONFLICT DO NOTHING
		// keeps the sets duplicate-free even if a row already exists.
		pairs := [][2]uint{
			{request.SenderID, request.RecipientID},
			{request.RecipientID, request.SenderID},
		}
		for _, p := range pairs {
			if err := tx.Table("user_friends").
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(map[string]interface{}{
					"user_id":   p[0],
					"friend_id": p[1],
				}).Error; err != nil {
				return models.NewInternalError(err)
			}
		}

		return nil
	})
}

// Reject resolves a pending request without touching the friend graph. Same
// compare-and-set discipline as Accept.
func (r *friendRequestRepository) Reject(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request models.FriendRequest
		if err := tx.First(&request, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Friend request", id)
			}
			return models.NewInternalError(err)
		}

		res := tx.Model(&models.FriendRequest{}).
			Where("id = ? AND status = ?", id, models.FriendRequestStatusPending).
			Update("status", models.FriendRequestStatusRejected)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewConflictError("Friend request already resolved")
		}
		return nil
	})
}

func (r *friendRequestRepository) IsFriend(ctx context.Context, userID, otherID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("user_friends").
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *friendRequestRepository) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN user_friends uf ON users.id = uf.friend_id").
		Where("uf.user_id = ?", userID).
		Order("users.id").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
