package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CheckToken verifies that the auth token attached to a submission is
// still usable. The server owns signature verification; the client
// only decodes the registered claims and refuses a token whose expiry
// has already passed, instead of waiting for the server to reject it.
func CheckToken(tokenString string, now time.Time) error {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return ErrTokenExpired
	}
	return nil
}
