// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"parley/internal/cache"
	"parley/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	ListRecommended(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// cachedUser round-trips every persisted column through Redis, including the
// bcrypt hash that User's json tags strip. The cache is private
// infrastructure; this shape is never serialized to clients.
type cachedUser struct {
	ID               uint      `json:"id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Password         string    `json:"password_hash"`
	Bio              string    `json:"bio"`
	ProfilePic       string    `json:"profile_pic"`
	NativeLanguage   string    `json:"native_language"`
	LearningLanguage string    `json:"learning_language"`
	Location         string    `json:"location"`
	IsOnboarded      bool      `json:"is_onboarded"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newCachedUser(u *models.User) cachedUser {
	return cachedUser{
		ID:               u.ID,
		FullName:         u.FullName,
		Email:            u.Email,
		Password:         u.Password,
		Bio:              u.Bio,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
		Location:         u.Location,
		IsOnboarded:      u.IsOnboarded,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func (c cachedUser) toUser() *models.User {
	return &models.User{
		ID:               c.ID,
		FullName:         c.FullName,
		Email:            c.Email,
		Password:         c.Password,
		Bio:              c.Bio,
		ProfilePic:       c.ProfilePic,
		NativeLanguage:   c.NativeLanguage,
		LearningLanguage: c.LearningLanguage,
		Location:         c.Location,
		IsOnboarded:      c.IsOnboarded,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var cached cachedUser
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &cached, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		cached = newCachedUser(&user)
		return nil
	})

	if err != nil {
		return nil, err
	}
	return cached.toUser(), nil
}

// GetByEmail looks up a user by case-normalized email. Returns (nil, nil)
// when no user exists.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	tx := r.db.WithContext(ctx)
	// A user loaded through a projection may carry no hash; never write an
	// empty one over the stored credential.
	if user.Password == "" {
		tx = tx.Omit("password")
	}
	if err := tx.Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Email is already registered")
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// ListRecommended returns candidate partners for userID: everyone except the
// user, their friends, and any counterparty of a pending request touching
// them. Ordered by id so repeated calls are stable.
func (r *userRepository) ListRecommended(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	var users []models.User

	friendIDs := r.db.Table("user_friends").
		Select("friend_id").
		Where("user_id = ?", userID)
	pendingSenders := r.db.Model(&models.FriendRequest{}).
		Select("sender_id").
		Where("recipient_id = ? AND status = ?", userID, models.FriendRequestStatusPending)
	pendingRecipients := r.db.Model(&models.FriendRequest{}).
		Select("recipient_id").
		Where("sender_id = ? AND status = ?", userID, models.FriendRequestStatusPending)

	if err := r.db.WithContext(ctx).
		Where("id <> ?", userID).
		Where("id NOT IN (?)", friendIDs).
		Where("id NOT IN (?)", pendingSenders).
		Where("id NOT IN (?)", pendingRecipients).
		Order("id").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	return users, nil
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed".
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
