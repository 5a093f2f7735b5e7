package models

import (
	"time"
)

// FriendRequestStatus represents the status of a friend request.
type FriendRequestStatus string

const (
	// FriendRequestStatusPending indicates a request awaiting resolution.
	FriendRequestStatusPending FriendRequestStatus = "pending"
	// FriendRequestStatusAccepted indicates an accepted request.
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	// FriendRequestStatusRejected indicates a rejected request.
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

// FriendRequest represents a directed friend proposal between two users.
//
// The (sender, recipient) pair carries a unique index so a second request on
// the same ordered pair is refused by the store, not just by a pre-check.
// Requests are never deleted; accepted and rejected are terminal states.
type FriendRequest struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	SenderID    uint                `gorm:"not null;uniqueIndex:idx_friend_requests_pair" json:"sender_id"`
	RecipientID uint                `gorm:"not null;uniqueIndex:idx_friend_requests_pair" json:"recipient_id"`
	Status      FriendRequestStatus `gorm:"type:varchar(20);default:'pending';index:idx_friend_requests_status" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	Sender    User `gorm:"foreignKey:SenderID" json:"-"`
	Recipient User `gorm:"foreignKey:RecipientID" json:"-"`
}

// TableName specifies the table name for GORM
func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Resolved reports whether the request has reached a terminal state.
func (f *FriendRequest) Resolved() bool {
	return f.Status != FriendRequestStatusPending
}

// FriendRequestView is the external projection of a FriendRequest. The
// participants go through PublicUser like every other boundary; a side that
// was not loaded is omitted rather than serialized as a zero user.
type FriendRequestView struct {
	ID          uint                `json:"id"`
	SenderID    uint                `json:"sender_id"`
	RecipientID uint                `json:"recipient_id"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Sender      *PublicUser         `json:"sender,omitempty"`
	Recipient   *PublicUser         `json:"recipient,omitempty"`
}

// View returns the public projection of the request.
func (f *FriendRequest) View() FriendRequestView {
	v := FriendRequestView{
		ID:          f.ID,
		SenderID:    f.SenderID,
		RecipientID: f.RecipientID,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
	if f.Sender.ID != 0 {
		sender := f.Sender.Public()
		v.Sender = &sender
	}
	if f.Recipient.ID != 0 {
		recipient := f.Recipient.Public()
		v.Recipient = &recipient
	}
	return v
}

// FriendRequestViews projects a slice of requests.
func FriendRequestViews(requests []FriendRequest) []FriendRequestView {
	out := make([]FriendRequestView, 0, len(requests))
	for i := range requests {
		out = append(out, requests[i].View())
	}
	return out
}
