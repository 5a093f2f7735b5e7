package seed

import (
	"fmt"
	"log"

	"parley/internal/models"

	"gorm.io/gorm"
)

// Options control demo seeding volume.
type Options struct {
	Users int
}

// Demo populates the database with a realistic social mesh: onboarded users,
// a spread of friendships, and a handful of unresolved requests.
func Demo(db *gorm.DB, opts Options) error {
	if opts.Users <= 0 {
		opts.Users = 20
	}

	f := NewFactory(db)

	users := make([]uint, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, u.ID)
	}

	// Befriend each user with the next one, leaving plenty of non-friends
	// for the recommendation feed.
	for i, id := range users {
		other := users[(i+1)%len(users)]
		if id < other {
			if err := f.Befriend(id, other); err != nil {
				return fmt.Errorf("seed friendship: %w", err)
			}
		}
	}

	// A few pending requests between distant users.
	for i := 0; i+5 < len(users); i += 7 {
		if _, err := f.CreateFriendRequest(users[i], users[i+5], models.FriendRequestStatusPending); err != nil {
			return fmt.Errorf("seed pending request: %w", err)
		}
	}

	log.Printf("seeded %d demo users", len(users))
	return nil
}
