package server

import (
	"time"

	"parley/internal/models"
	"parley/internal/service"

	"github.com/gofiber/fiber/v2"
)

// setSessionCookie attaches the session token to the response. The cookie is
// HTTP-only and scoped to the token's lifetime; browsers carry it so SPA
// clients never have to store the token themselves.
func (s *Server) setSessionCookie(c *fiber.Ctx, tok string) {
	isProduction := s.config.Env == "production" || s.config.Env == "prod"
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Expires:  time.Now().Add(time.Duration(s.config.JWTTTLHours) * time.Hour),
		HTTPOnly: true,
		Secure:   isProduction,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

// clearSessionCookie expires the session cookie.
func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Path:     "/",
	})
}

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.Context(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, tok)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": tok,
		"user":  user.Public(),
	})
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}

	user, err := s.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	s.setSessionCookie(c, tok)

	return c.JSON(fiber.Map{
		"token": tok,
		"user":  user.Public(),
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so logout only
// clears the cookie; an extracted token stays valid until expiry.
func (s *Server) Logout(c *fiber.Ctx) error {
	s.clearSessionCookie(c)
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
	})
}

// Onboarding handles POST /api/auth/onboarding
func (s *Server) Onboarding(c *fiber.Ctx) error {
	var req struct {
		FullName         string `json:"full_name"`
		Bio              string `json:"bio"`
		NativeLanguage   string `json:"native_language"`
		LearningLanguage string `json:"learning_language"`
		Location         string `json:"location"`
		ProfilePic       string `json:"profile_pic"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Onboard(c.Context(), s.currentUserID(c), service.OnboardInput{
		FullName:         req.FullName,
		Bio:              req.Bio,
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		Location:         req.Location,
		ProfilePic:       req.ProfilePic,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": user.Public(),
	})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	return c.JSON(fiber.Map{
		"user": user.Public(),
	})
}

// ChangePassword handles PUT /api/auth/password
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.authService.ChangePassword(c.Context(), s.currentUserID(c),
		req.CurrentPassword, req.NewPassword); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password updated successfully",
	})
}
