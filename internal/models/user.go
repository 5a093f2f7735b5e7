// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// User represents a registered identity in Parley.
//
// Password holds the bcrypt hash, never the plaintext. The field is excluded
// from JSON as a safety net, but external projections must go through
// Public() rather than rely on the struct tag.
type User struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	FullName         string    `gorm:"not null" json:"full_name"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	Password         string    `gorm:"not null" json:"-"`
	Bio              string    `gorm:"type:varchar(250)" json:"bio"`
	ProfilePic       string    `json:"profile_pic"`
	NativeLanguage   string    `json:"native_language"`
	LearningLanguage string    `json:"learning_language"`
	Location         string    `json:"location"`
	IsOnboarded      bool      `gorm:"default:false" json:"is_onboarded"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Friends is the mutual friend set, maintained exclusively by the
	// relationship layer on friend-request acceptance.
	Friends []*User `gorm:"many2many:user_friends;joinForeignKey:UserID;joinReferences:FriendID" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// PublicUser is the external projection of a User. It is the only shape
// handlers are allowed to serialize; it has no password field at all.
type PublicUser struct {
	ID               uint      `json:"id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Bio              string    `json:"bio"`
	ProfilePic       string    `json:"profile_pic"`
	NativeLanguage   string    `json:"native_language"`
	LearningLanguage string    `json:"learning_language"`
	Location         string    `json:"location"`
	IsOnboarded      bool      `json:"is_onboarded"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Public returns the public projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		FullName:         u.FullName,
		Email:            u.Email,
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

// PublicUsers projects a slice of users.
func PublicUsers(users []User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}

// NormalizeEmail lowercases and trims an email address. Email uniqueness is
// case-insensitive, so every write and lookup must go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
