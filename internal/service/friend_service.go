package service

import (
	"context"

	"parley/internal/models"
	"parley/internal/repository"
)

// FriendService manages the friend-request state machine and the friend graph.
type FriendService struct {
	requests repository.FriendRequestRepository
	users    repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(requests repository.FriendRequestRepository, users repository.UserRepository) *FriendService {
	return &FriendService{
		requests: requests,
		users:    users,
	}
}

// SendRequest creates a pending request from sender to recipient.
//
// Refused when the target is the sender, the two are already friends, or an
// unresolved request exists in either direction. The unique index on
// (sender_id, recipient_id) closes the remaining same-direction race at the
// store.
func (s *FriendService) SendRequest(ctx context.Context, senderID, recipientID uint) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, models.NewValidationError("You can't send a friend request to yourself")
	}

	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}

	friends, err := s.requests.IsFriend(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, models.NewConflictError("You are already friends with this user")
	}

	pending, err := s.requests.PendingBetween(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, models.NewConflictError("A friend request already exists between you and this user")
	}

	request := &models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      models.FriendRequestStatusPending,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, err
	}

	return s.requests.GetByID(ctx, request.ID)
}

// AcceptRequest resolves a pending request as accepted and makes both users
// friends of each other. Only the recipient may accept.
func (s *FriendService) AcceptRequest(ctx context.Context, userID, requestID uint) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.RecipientID != userID {
		return models.NewForbiddenError("You can only accept friend requests sent to you")
	}
	if request.Resolved() {
		return models.NewConflictError("Friend request already resolved")
	}
	return s.requests.Accept(ctx, requestID)
}

// RejectRequest resolves a pending request as rejected. The record is kept;
// rejection is terminal and never touches the friend graph.
func (s *FriendService) RejectRequest(ctx context.Context, userID, requestID uint) error {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.RecipientID != userID {
		return models.NewForbiddenError("You can only reject friend requests sent to you")
	}
	if request.Resolved() {
		return models.NewConflictError("Friend request already resolved")
	}
	return s.requests.Reject(ctx, requestID)
}

// ListIncoming returns pending requests addressed to the user.
func (s *FriendService) ListIncoming(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.requests.ListIncoming(ctx, userID)
}

// ListOutgoing returns pending requests the user has sent.
func (s *FriendService) ListOutgoing(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	return s.requests.ListOutgoing(ctx, userID)
}

// ListFriends returns the user's friend set.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.requests.ListFriends(ctx, userID)
}
