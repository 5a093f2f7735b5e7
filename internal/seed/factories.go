// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"parley/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var languages = []string{
	"english", "spanish", "french", "german", "mandarin",
	"japanese", "korean", "portuguese", "italian", "hindi",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists a sample user with an onboarded profile.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	native := languages[f.rand.Intn(len(languages))]
	learning := languages[f.rand.Intn(len(languages))]
	for learning == native {
		learning = languages[f.rand.Intn(len(languages))]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:         gofakeit.Name(),
		Email:            gofakeit.Email(),
		Password:         string(hash),
		Bio:              gofakeit.Sentence(8),
		ProfilePic:       fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", f.rand.Intn(100)+1),
		NativeLanguage:   native,
		LearningLanguage: learning,
		Location:         gofakeit.City() + ", " + gofakeit.Country(),
		IsOnboarded:      true,
	}

	for _, override := range overrides {
		override(user)
	}

	user.Email = models.NormalizeEmail(user.Email)
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFriendRequest persists a friend request in the given status.
func (f *Factory) CreateFriendRequest(senderID, recipientID uint, status models.FriendRequestStatus) (*models.FriendRequest, error) {
	request := &models.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      status,
	}
	if err := f.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// Befriend records an accepted request and the symmetric friend rows, the
// same shape acceptance produces at runtime.
func (f *Factory) Befriend(userID, otherID uint) error {
	if _, err := f.CreateFriendRequest(userID, otherID, models.FriendRequestStatusAccepted); err != nil {
		return err
	}
	pairs := [][2]uint{{userID, otherID}, {otherID, userID}}
	for _, p := range pairs {
		if err := f.db.Table("user_friends").Create(map[string]interface{}{
			"user_id":   p[0],
			"friend_id": p[1],
		}).Error; err != nil {
			return err
		}
	}
	return nil
}
