// Package provider wraps the external chat/video service. The core relies on
// exactly two operations: registering an identity with the provider and
// minting a provider session token. Everything else about the provider is
// opaque.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"parley/internal/middleware"
	"parley/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const requestTimeout = 3 * time.Second

// Identity is the projection of a user sent to the provider.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

// Client talks to the external provider. A client with empty credentials is
// disabled: calls become no-ops so the core never depends on the provider
// being configured.
type Client struct {
	apiKey    string
	apiSecret string
	baseURL   string
	http      *http.Client
}

// New returns a provider Client.
func New(apiKey, apiSecret, baseURL string) *Client {
	return &Client{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		baseURL:   baseURL,
		http:      &http.Client{Timeout: requestTimeout},
	}
}

// Enabled reports whether provider credentials are configured.
func (c *Client) Enabled() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// UpsertUser registers or updates a user identity with the provider. The call
// is time-bounded and callers treat failure as non-fatal: a provider outage
// must never fail registration or profile updates.
func (c *Client) UpsertUser(ctx context.Context, identity Identity) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{"users": []Identity{identity}})
	if err != nil {
		return models.NewUpstreamError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return models.NewUpstreamError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	auth, err := c.serverToken()
	if err != nil {
		return models.NewUpstreamError(err)
	}
	req.Header.Set("Authorization", auth)

	resp, err := c.http.Do(req)
	if err != nil {
		middleware.ProviderCalls.WithLabelValues("upsert_user", "error").Inc()
		return models.NewUpstreamError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		middleware.ProviderCalls.WithLabelValues("upsert_user", "error").Inc()
		return models.NewUpstreamError(fmt.Errorf("provider returned status %d", resp.StatusCode))
	}

	middleware.ProviderCalls.WithLabelValues("upsert_user", "ok").Inc()
	return nil
}

// MintToken creates a provider session token for the user. The provider
// accepts HS256 tokens signed with the shared API secret, so minting is
// local and requires no network round trip.
func (c *Client) MintToken(userID uint) (string, error) {
	if !c.Enabled() {
		return "", models.NewUpstreamError(fmt.Errorf("provider not configured"))
	}

	claims := jwt.MapClaims{
		"user_id": strconv.FormatUint(uint64(userID), 10),
		"iat":     time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(c.apiSecret))
	if err != nil {
		middleware.ProviderCalls.WithLabelValues("mint_token", "error").Inc()
		return "", models.NewUpstreamError(err)
	}

	middleware.ProviderCalls.WithLabelValues("mint_token", "ok").Inc()
	return signed, nil
}

// serverToken builds the server-side auth token attached to provider API calls.
func (c *Client) serverToken() (string, error) {
	claims := jwt.MapClaims{
		"server": true,
		"iat":    time.Now().Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(c.apiSecret))
}
