package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parley/internal/config"
	"parley/internal/database"
	"parley/internal/provider"
	"parley/internal/repository"
	"parley/internal/service"
	"parley/internal/token"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestServer builds a Server over a fresh in-memory SQLite database.
// The Prometheus middleware is left nil so repeated setups in one test binary
// do not re-register collectors.
func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		Port:        "0",
		Env:         "test",
		JWTSecret:   "test-secret",
		JWTTTLHours: 1,
	}

	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRequestRepository(db)
	providerClient := provider.New("", "", "")

	s := &Server{
		config:     cfg,
		db:         db,
		tokens:     token.New(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		provider:   providerClient,
		userRepo:   userRepo,
		friendRepo: friendRepo,
	}
	s.authService = service.NewAuthService(userRepo, providerClient)
	s.userService = service.NewUserService(userRepo)
	s.friendService = service.NewFriendService(friendRepo, userRepo)

	app := fiber.New()
	s.SetupRoutes(app)

	return s, app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, tok string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}

	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	parsed := map[string]json.RawMessage{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &parsed)
	}
	return resp, parsed
}

// signupUser registers a user through the API and returns their session token and ID.
func signupUser(t *testing.T, app *fiber.App, name, email string) (string, uint) {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"full_name": name,
		"email":     email,
		"password":  "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup %s: expected 201, got %d", email, resp.StatusCode)
	}

	var tok string
	if err := json.Unmarshal(body["token"], &tok); err != nil {
		t.Fatalf("signup %s: token missing: %v", email, err)
	}
	var user struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(body["user"], &user); err != nil {
		t.Fatalf("signup %s: user missing: %v", email, err)
	}
	return tok, user.ID
}
