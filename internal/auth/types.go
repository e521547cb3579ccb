package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// HeaderDeviceKey carries the per-browser key that identifies an anonymous
// caller. The frontend persists whatever value the server echoes back.
const HeaderDeviceKey = "X-Device-Key"
