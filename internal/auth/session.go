package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one authenticated browser for one user. A user has at most one:
// creating a new session replaces whatever was there.
type Session struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the store-side record has outlived the token's
// validity window. Expired rows may linger until superseded; token
// verification is what actually rejects them.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionRepository is the persistence surface for session records.
// Implementations: bun/Postgres (SessionDBRepository) and Redis
// (SessionRedisRepository).
type SessionRepository interface {
	// Replace atomically removes every session for the user and installs
	// the new one. This is the single-active-session invariant: two
	// concurrent logins end with exactly one surviving session, never two.
	Replace(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// GetByToken returns the session backing a raw token, or
	// ErrSessionNotFound.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// DeleteByToken removes the session matching the raw token and reports
	// whether one existed. Callers use the bool to distinguish "logged out"
	// from "was already logged out".
	DeleteByToken(ctx context.Context, token string) (bool, error)

	// DeleteByUser removes all sessions for a user and returns the count.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// hashToken derives the storage key for a token. Raw tokens never hit the
// store, so a leaked sessions table cannot be replayed.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
