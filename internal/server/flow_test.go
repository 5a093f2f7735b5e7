package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"parley/internal/cache"
	"parley/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Full journey across signup, recommendations, the friend-request state
// machine, and the friend lists.
func TestFriendRequestFlow(t *testing.T) {
	_, app, db := setupTestServer(t)

	tokA, idA := signupUser(t, app, "Alice", "alice@example.com")
	tokB, idB := signupUser(t, app, "Bob", "bob@example.com")
	tokC, idC := signupUser(t, app, "Cora", "cora@example.com")

	userIDs := func(raw json.RawMessage) []uint {
		var users []models.PublicUser
		if err := json.Unmarshal(raw, &users); err != nil {
			t.Fatalf("decode users: %v", err)
		}
		ids := make([]uint, 0, len(users))
		for _, u := range users {
			ids = append(ids, u.ID)
		}
		return ids
	}

	contains := func(ids []uint, want uint) bool {
		for _, id := range ids {
			if id == want {
				return true
			}
		}
		return false
	}

	// Fresh accounts see each other in recommendations, onboarded or not.
	resp, body := doJSON(t, app, http.MethodGet, "/api/users", tokA, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommendations: expected 200, got %d", resp.StatusCode)
	}
	ids := userIDs(body["users"])
	if !contains(ids, idB) || !contains(ids, idC) || contains(ids, idA) {
		t.Fatalf("unexpected recommendations for A: %v", ids)
	}

	// A sends B a friend request.
	resp, body = doJSON(t, app, http.MethodPost, "/api/users/friend-request/2", tokA, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send request: expected 201, got %d", resp.StatusCode)
	}
	var request models.FriendRequestView
	if err := json.Unmarshal(body["request"], &request); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if request.SenderID != idA || request.RecipientID != idB || request.Status != models.FriendRequestStatusPending {
		t.Fatalf("unexpected request: %+v", request)
	}

	// Duplicates are refused in both directions while unresolved.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/friend-request/2", tokA, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate same direction: expected 409, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/friend-request/1", tokB, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate reverse direction: expected 409, got %d", resp.StatusCode)
	}

	// Self-requests are invalid.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/friend-request/1", tokA, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("self request: expected 400, got %d", resp.StatusCode)
	}

	// The pending request hides both parties from each other's feed.
	_, body = doJSON(t, app, http.MethodGet, "/api/users", tokA, nil)
	ids = userIDs(body["users"])
	if contains(ids, idB) || !contains(ids, idC) {
		t.Fatalf("pending request should hide B from A's feed: %v", ids)
	}

	// B sees the incoming request; A sees it outgoing.
	_, body = doJSON(t, app, http.MethodGet, "/api/users/friend-requests", tokB, nil)
	var incoming []models.FriendRequestView
	if err := json.Unmarshal(body["requests"], &incoming); err != nil {
		t.Fatalf("decode incoming: %v", err)
	}
	if len(incoming) != 1 || incoming[0].SenderID != idA {
		t.Fatalf("unexpected incoming requests: %+v", incoming)
	}
	// Only the loaded side is serialized; no zero-value counterparty object.
	if incoming[0].Sender == nil || incoming[0].Sender.ID != idA {
		t.Fatalf("incoming request missing sender view: %+v", incoming[0])
	}
	if incoming[0].Recipient != nil {
		t.Fatalf("incoming request should omit recipient, got %+v", incoming[0].Recipient)
	}

	_, body = doJSON(t, app, http.MethodGet, "/api/users/outgoing-friend-requests", tokA, nil)
	var outgoing []models.FriendRequestView
	if err := json.Unmarshal(body["requests"], &outgoing); err != nil {
		t.Fatalf("decode outgoing: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].RecipientID != idB {
		t.Fatalf("unexpected outgoing requests: %+v", outgoing)
	}
	if outgoing[0].Recipient == nil || outgoing[0].Recipient.ID != idB {
		t.Fatalf("outgoing request missing recipient view: %+v", outgoing[0])
	}
	if outgoing[0].Sender != nil {
		t.Fatalf("outgoing request should omit sender, got %+v", outgoing[0].Sender)
	}

	// Only the recipient may accept: not a third party, not the sender.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/friend-request/1/accept", tokC, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("third-party accept: expected 403, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/friend-request/1/accept", tokA, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("sender accept: expected 403, got %d", resp.StatusCode)
	}

	// B accepts; a second resolution attempt conflicts.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/friend-request/1/accept", tokB, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/friend-request/1/accept", tokB, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-accept: expected 409, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/friend-request/1/reject", tokB, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("reject after accept: expected 409, got %d", resp.StatusCode)
	}

	// Friendship is symmetric.
	for _, tc := range []struct {
		tok  string
		want uint
	}{{tokA, idB}, {tokB, idA}} {
		_, body = doJSON(t, app, http.MethodGet, "/api/users/friends", tc.tok, nil)
		friends := userIDs(body["friends"])
		if len(friends) != 1 || friends[0] != tc.want {
			t.Fatalf("unexpected friends: %v (want %d)", friends, tc.want)
		}
	}

	// Friends no longer appear in recommendations; strangers still do.
	_, body = doJSON(t, app, http.MethodGet, "/api/users", tokA, nil)
	ids = userIDs(body["users"])
	if contains(ids, idB) || !contains(ids, idC) {
		t.Fatalf("friend should stay hidden from feed: %v", ids)
	}

	// A new request between friends is refused.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/friend-request/2", tokA, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("request between friends: expected 409, got %d", resp.StatusCode)
	}

	// user_friends rows exist exactly once per direction.
	var count int64
	if err := db.Table("user_friends").Count(&count).Error; err != nil {
		t.Fatalf("count friends: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 friend rows, got %d", count)
	}
}

func TestRejectFlow(t *testing.T) {
	_, app, _ := setupTestServer(t)

	tokA, _ := signupUser(t, app, "Alice", "alice@example.com")
	tokC, _ := signupUser(t, app, "Cora", "cora@example.com")

	// C asks A; A turns them down.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/users/friend-request/1", tokC, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send request: expected 201, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPut, "/api/users/friend-request/1/reject", tokA, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reject: expected 200, got %d", resp.StatusCode)
	}

	// No friendship was formed.
	_, body := doJSON(t, app, http.MethodGet, "/api/users/friends", tokA, nil)
	var friends []json.RawMessage
	_ = json.Unmarshal(body["friends"], &friends)
	if len(friends) != 0 {
		t.Fatalf("rejection must not create friends, got %v", friends)
	}

	// The rejected record is terminal for that direction: C cannot re-ask A,
	// but A remains free to approach C.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/friend-request/1", tokC, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-request after rejection: expected 409, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, app, http.MethodPost, "/api/users/friend-request/2", tokA, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("reverse request after rejection: expected 201, got %d", resp.StatusCode)
	}
}

func TestOnboardingFlow(t *testing.T) {
	_, app, _ := setupTestServer(t)

	tok, _ := signupUser(t, app, "Alice", "alice@example.com")

	// Incomplete onboarding payload is refused.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/onboarding", tok, map[string]string{
		"full_name": "Alice A.",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("incomplete onboarding: expected 400, got %d", resp.StatusCode)
	}

	resp, body := doJSON(t, app, http.MethodPost, "/api/auth/onboarding", tok, map[string]string{
		"full_name":         "Alice A.",
		"bio":               "learning languages",
		"native_language":   "english",
		"learning_language": "portuguese",
		"location":          "Lisbon, Portugal",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("onboarding: expected 200, got %d", resp.StatusCode)
	}

	var user models.PublicUser
	if err := json.Unmarshal(body["user"], &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if !user.IsOnboarded || user.LearningLanguage != "portuguese" {
		t.Fatalf("unexpected user after onboarding: %+v", user)
	}

	// The change is visible on /me.
	_, body = doJSON(t, app, http.MethodGet, "/api/auth/me", tok, nil)
	if err := json.Unmarshal(body["user"], &user); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if user.FullName != "Alice A." {
		t.Fatalf("unexpected me: %+v", user)
	}
}

func TestResponsesNeverLeakPasswordHash(t *testing.T) {
	_, app, _ := setupTestServer(t)

	tokA, _ := signupUser(t, app, "Alice", "alice@example.com")
	tokB, _ := signupUser(t, app, "Bob", "bob@example.com")

	// A pending request so the friend-request listings carry embedded users.
	resp, _ := doJSON(t, app, http.MethodPost, "/api/users/friend-request/2", tokA, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send request: expected 201, got %d", resp.StatusCode)
	}

	checks := []struct {
		token string
		path  string
	}{
		{tokA, "/api/auth/me"},
		{tokA, "/api/users"},
		{tokA, "/api/users/friends"},
		{tokA, "/api/users/outgoing-friend-requests"},
		{tokB, "/api/users/friend-requests"},
	}
	for _, check := range checks {
		resp, body := doJSON(t, app, http.MethodGet, check.path, check.token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", check.path, resp.StatusCode)
		}
		for key, raw := range body {
			if jsonContainsKey(t, raw, "password") {
				t.Fatalf("%s: %s leaks a password field", check.path, key)
			}
		}
	}
}

func jsonContainsKey(t *testing.T, raw json.RawMessage, key string) bool {
	t.Helper()
	var asMap map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for k, v := range asMap {
			if k == key {
				return true
			}
			if jsonContainsKey(t, v, key) {
				return true
			}
		}
		return false
	}
	var asList []json.RawMessage
	if err := json.Unmarshal(raw, &asList); err == nil {
		for _, v := range asList {
			if jsonContainsKey(t, v, key) {
				return true
			}
		}
	}
	return false
}

// A user served from the cache must keep their credential: onboarding and
// other profile writes never clobber the stored hash.
func TestOnboardingWithWarmCacheKeepsCredentials(t *testing.T) {
	_, app, _ := setupTestServer(t)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		cache.SetClient(nil)
		mr.Close()
	})

	tok, _ := signupUser(t, app, "Alice", "alice@example.com")

	// The first gated request warms the cache, the second is served from it.
	for i := 0; i < 2; i++ {
		resp, _ := doJSON(t, app, http.MethodGet, "/api/auth/me", tok, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("me: expected 200, got %d", resp.StatusCode)
		}
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/onboarding", tok, map[string]string{
		"full_name":         "Alice A.",
		"bio":               "learning languages",
		"native_language":   "english",
		"learning_language": "portuguese",
		"location":          "Lisbon, Portugal",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("onboarding: expected 200, got %d", resp.StatusCode)
	}

	// Login still verifies against the stored hash.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login after cached onboarding: expected 200, got %d", resp.StatusCode)
	}

	// And the current password still gates a password change.
	resp, _ = doJSON(t, app, http.MethodPut, "/api/auth/password", tok, map[string]string{
		"current_password": "password123",
		"new_password":     "password456",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("password change after cached reads: expected 200, got %d", resp.StatusCode)
	}
}
