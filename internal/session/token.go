package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"point2point/internal/types"
)

// identityFromToken recovers a display identity and expiry from a stored
// bearer token without verifying its signature. Verification is the
// server's job; the claims are used only to label the rehydrated session
// and to discard tokens that are already expired.
func identityFromToken(raw string) (types.User, time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return types.User{}, time.Time{}, fmt.Errorf("parse session token: %w", err)
	}

	user := types.User{
		Email:     claimString(claims, "email"),
		FirstName: claimString(claims, "firstName"),
		LastName:  claimString(claims, "lastName"),
		HomeArea:  claimString(claims, "homeArea"),
	}
	switch id := claims["sub"].(type) {
	case string:
		// Numeric subject claims arrive as strings from the auth service.
		var n int64
		if _, err := fmt.Sscanf(id, "%d", &n); err == nil {
			user.ID = n
		}
	case float64:
		user.ID = int64(id)
	}

	var expiry time.Time
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		expiry = exp.Time
	}
	return user, expiry, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
