package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetChatToken handles GET /api/chat/token
//
// Mints a provider session token for the authenticated user. The token is
// opaque to this API; clients hand it to the provider's SDK directly.
func (s *Server) GetChatToken(c *fiber.Ctx) error {
	tok, err := s.authService.ChatToken(c.Context(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"token": tok,
	})
}
