// Package service contains the application's business logic.
package service

import (
	"context"
	"log/slog"
	"strconv"

	"parley/internal/middleware"
	"parley/internal/models"
	"parley/internal/provider"
	"parley/internal/repository"
	"parley/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// Seed avatars assigned at signup, matching the provider's avatar service.
const defaultAvatarCount = 100

// ProviderClient is the slice of the provider API the auth flow needs.
type ProviderClient interface {
	Enabled() bool
	UpsertUser(ctx context.Context, identity provider.Identity) error
	MintToken(userID uint) (string, error)
}

// AuthService handles registration, login and profile lifecycle.
type AuthService struct {
	users    repository.UserRepository
	provider ProviderClient
}

// NewAuthService creates an AuthService.
func NewAuthService(users repository.UserRepository, p ProviderClient) *AuthService {
	return &AuthService{users: users, provider: p}
}

// RegisterInput carries signup data.
type RegisterInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. The email is stored case-normalized and the
// password is stored as a bcrypt hash. After the account is committed the
// identity is mirrored to the external provider on a best-effort basis.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if err := validation.ValidateFullName(input.FullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(input.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		FullName: input.FullName,
		Email:    input.Email,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	user.ProfilePic = avatarURL(user.ID)
	if err := s.users.Update(ctx, user); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to assign avatar",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	}

	s.syncProvider(ctx, user)

	return user, nil
}

// Login verifies credentials. All failures are reported identically so a
// caller cannot distinguish an unknown email from a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid email or password")
	}
	return user, nil
}

// OnboardInput carries the profile fields completed during onboarding.
type OnboardInput struct {
	FullName         string `json:"full_name"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"native_language"`
	LearningLanguage string `json:"learning_language"`
	Location         string `json:"location"`
	ProfilePic       string `json:"profile_pic"`
}

// Onboard completes a user's profile and marks the account onboarded. The
// updated identity is re-mirrored to the provider.
func (s *AuthService) Onboard(ctx context.Context, userID uint, input OnboardInput) (*models.User, error) {
	if err := validation.ValidateFullName(input.FullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateBio(input.Bio); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if input.NativeLanguage == "" || input.LearningLanguage == "" || input.Location == "" {
		return nil, models.NewValidationError("native language, learning language and location are required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FullName = input.FullName
	user.Bio = input.Bio
	user.NativeLanguage = input.NativeLanguage
	user.LearningLanguage = input.LearningLanguage
	user.Location = input.Location
	if input.ProfilePic != "" {
		user.ProfilePic = input.ProfilePic
	}
	user.IsOnboarded = true

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.syncProvider(ctx, user)

	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	if err := validation.ValidatePassword(next); err != nil {
		return models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	user.Password = string(hash)

	return s.users.Update(ctx, user)
}

// ChatToken mints a provider session token for the user.
func (s *AuthService) ChatToken(ctx context.Context, userID uint) (string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return "", err
	}
	return s.provider.MintToken(userID)
}

// syncProvider mirrors the user's identity to the external provider. Failures
// are logged and swallowed; the provider is never on the critical path.
func (s *AuthService) syncProvider(ctx context.Context, user *models.User) {
	if s.provider == nil || !s.provider.Enabled() {
		return
	}
	identity := provider.Identity{
		ID:    strconv.FormatUint(uint64(user.ID), 10),
		Name:  user.FullName,
		Image: user.ProfilePic,
	}
	if err := s.provider.UpsertUser(ctx, identity); err != nil {
		middleware.Logger.WarnContext(ctx, "Provider identity sync failed",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func avatarURL(userID uint) string {
	idx := userID%defaultAvatarCount + 1
	return "https://avatar.iran.liara.run/public/" + strconv.FormatUint(uint64(idx), 10) + ".png"
}
