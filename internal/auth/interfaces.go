package auth

import (
	"time"

	"github.com/google/uuid"
)

// TokenService defines the interface for session token creation and
// validation. PasetoService (PASETO v4.local) is the production
// implementation.
type TokenService interface {
	CreateToken(userID uuid.UUID, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}
