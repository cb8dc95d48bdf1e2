package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Claims are the session-token claims issued on sign-in and sign-up.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, revocable through the session registry.
	SID string `json:"sid"`

	// Role of the user when the token was minted. Handlers re-read the
	// stored user, so this is informational only.
	Role string `json:"role,omitempty"`

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// NewSessionClaims builds minimally-correct claims for a session.
func NewSessionClaims(
	subject, sid, role, email, name string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:   sid,
		Role:  role,
		Email: email,
		Name:  name,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// TTL returns how long the token remains valid from now, or zero.
func (c *Claims) TTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiryWithLeeway checks exp and nbf with a small grace period for
// clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
