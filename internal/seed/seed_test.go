package seed

import (
	"testing"

	"parley/internal/database"
	"parley/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDemoSeedsUsersAndMesh(t *testing.T) {
	db := setupSeedTestDB(t)

	if err := Demo(db, Options{Users: 12}); err != nil {
		t.Fatalf("demo seed: %v", err)
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if userCount != 12 {
		t.Fatalf("expected 12 users, got %d", userCount)
	}

	// Friend rows come in symmetric pairs.
	var friendRows int64
	if err := db.Table("user_friends").Count(&friendRows).Error; err != nil {
		t.Fatalf("count friend rows: %v", err)
	}
	if friendRows == 0 || friendRows%2 != 0 {
		t.Fatalf("expected non-zero even friend rows, got %d", friendRows)
	}

	var pending int64
	if err := db.Model(&models.FriendRequest{}).
		Where("status = ?", models.FriendRequestStatusPending).
		Count(&pending).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending == 0 {
		t.Fatal("expected some pending requests")
	}
}

func TestFactoryCreateUserIsOnboarded(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db)

	u, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !u.IsOnboarded {
		t.Fatal("seeded users should be onboarded")
	}
	if u.NativeLanguage == u.LearningLanguage {
		t.Fatalf("native and learning language must differ, both %q", u.NativeLanguage)
	}
	if u.Email != models.NormalizeEmail(u.Email) {
		t.Fatalf("email not normalized: %q", u.Email)
	}
}

func TestFactoryOverrides(t *testing.T) {
	db := setupSeedTestDB(t)
	f := NewFactory(db)

	u, err := f.CreateUser(func(u *models.User) {
		u.Email = "Fixed@Example.com"
		u.FullName = "Fixed Name"
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.FullName != "Fixed Name" {
		t.Fatalf("override not applied: %q", u.FullName)
	}
	if u.Email != "fixed@example.com" {
		t.Fatalf("expected normalized override email, got %q", u.Email)
	}
}
