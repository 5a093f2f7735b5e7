package service

import (
	"context"

	"parley/internal/models"
	"parley/internal/repository"
	"parley/internal/validation"
)

// UserService provides user lookup and recommendation logic.
type UserService struct {
	users repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// GetUserByID returns a user by id.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// Recommend returns candidate partners for the user: everyone except
// themselves, their friends, and counterparties of unresolved requests.
func (s *UserService) Recommend(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.users.ListRecommended(ctx, userID, limit, offset)
}

// UpdateProfileInput carries optional profile changes; empty fields are left
// untouched.
type UpdateProfileInput struct {
	UserID     uint
	FullName   string
	Bio        string
	Location   string
	ProfilePic string
}

// UpdateProfile applies partial profile changes.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.FullName != "" {
		if err := validation.ValidateFullName(in.FullName); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.FullName = in.FullName
	}
	if in.Bio != "" {
		if err := validation.ValidateBio(in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = in.Bio
	}
	if in.Location != "" {
		user.Location = in.Location
	}
	if in.ProfilePic != "" {
		user.ProfilePic = in.ProfilePic
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
