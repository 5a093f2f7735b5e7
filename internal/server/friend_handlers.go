package server

import (
	"parley/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/users/friend-request/:id
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	recipientID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	request, err := s.friendService.SendRequest(c.Context(), s.currentUserID(c), recipientID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"request": request.View(),
	})
}

// AcceptFriendRequest handles PUT /api/users/friend-request/:id/accept
func (s *Server) AcceptFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.friendService.AcceptRequest(c.Context(), s.currentUserID(c), requestID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Friend request accepted",
	})
}

// RejectFriendRequest handles PUT /api/users/friend-request/:id/reject
func (s *Server) RejectFriendRequest(c *fiber.Ctx) error {
	requestID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.friendService.RejectRequest(c.Context(), s.currentUserID(c), requestID); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Friend request rejected",
	})
}

// GetFriendRequests handles GET /api/users/friend-requests
func (s *Server) GetFriendRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListIncoming(c.Context(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"requests": models.FriendRequestViews(requests),
	})
}

// GetOutgoingFriendRequests handles GET /api/users/outgoing-friend-requests
func (s *Server) GetOutgoingFriendRequests(c *fiber.Ctx) error {
	requests, err := s.friendService.ListOutgoing(c.Context(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"requests": models.FriendRequestViews(requests),
	})
}
