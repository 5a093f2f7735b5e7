package server

import (
	"parley/internal/models"
	"parley/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRecommendedUsers handles GET /api/users
//
// Returns candidate partners for the authenticated user: everyone except
// themselves, their friends, and counterparties of unresolved requests.
func (s *Server) GetRecommendedUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	users, err := s.userService.Recommend(c.Context(), s.currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": models.PublicUsers(users),
	})
}

// GetFriends handles GET /api/users/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	friends, err := s.friendService.ListFriends(c.Context(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"friends": models.PublicUsers(friends),
	})
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FullName   string `json:"full_name"`
		Bio        string `json:"bio"`
		Location   string `json:"location"`
		ProfilePic string `json:"profile_pic"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:     s.currentUserID(c),
		FullName:   req.FullName,
		Bio:        req.Bio,
		Location:   req.Location,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": user.Public(),
	})
}
