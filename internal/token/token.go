// Package token issues and verifies the stateless session tokens that bind a
// bearer credential to a user identity.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "parley-api"
	audience = "parley-client"
)

// Verification failures. The authentication gate collapses all of these into
// one unauthenticated response; the distinction exists for logs and tests.
var (
	// ErrTokenMissing indicates no token was presented.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenMalformed indicates the token failed signature or structural checks.
	ErrTokenMalformed = errors.New("token malformed")
	// ErrTokenExpired indicates a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// Service issues and verifies signed session tokens. It holds no per-token
// state: verification is pure and consults nothing but the secret and clock.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New returns a token Service signing with secret and issuing tokens valid
// for ttl.
func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token with the user ID as subject.
func (s *Service) Issue(userID uint) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("token secret not configured")
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		ID:        uuid.NewString(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify checks the signature, issuer, audience and expiry of raw and
// returns the subject user ID. Expiry is evaluated against the current
// clock, not the issuance time.
func (s *Service) Verify(raw string) (uint, error) {
	if raw == "" {
		return 0, ErrTokenMissing
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenMalformed
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return 0, ErrTokenMalformed
	}
	return uint(userID), nil
}
