// ABOUTME: Unverified inspection of JWT session tokens
// ABOUTME: Extracts expiry, subject and role for display; the backend owns verification

package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned for opaque tokens. Opaque tokens are still valid sessions.
var ErrNotJWT = errors.New("token is not a JWT")

// TokenClaims holds the displayable claims of a session token
type TokenClaims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry before now
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// InspectToken decodes the token's claims without verifying its signature
func InspectToken(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	tc := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		tc.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tc.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tc.IssuedAt = iat.Time
	}
	if role, ok := claims["role"].(string); ok {
		tc.Role = role
	}
	return tc, nil
}
