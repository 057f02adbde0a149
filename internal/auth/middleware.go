package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/enrollhq/enroll-api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserIDContextKey ContextKey = "user_id"

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	sessions     SessionRepository
	cookies      RequestCookieReader
}

func NewMiddleware(tokenService TokenService, sessions SessionRepository, cookies RequestCookieReader) *Middleware {
	return &Middleware{
		tokenService: tokenService,
		sessions:     sessions,
		cookies:      cookies,
	}
}

// RequireAuth validates the session token and confirms a live store-side
// session backs it. The token's embedded expiry rejects stale tokens on its
// own; the store lookup is what makes logout and session replacement take
// effect immediately.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := SessionTokenFromRequest(m.cookies, r)
		if err != nil {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "session has expired", httputil.CodeUnauthorized, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid session token", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}

		// A verified token whose session row is gone was logged out or
		// superseded by a newer login
		if _, err := m.sessions.GetByToken(r.Context(), token); err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				httputil.RespondErrorWithCode(w, "session is no longer active", httputil.CodeUnauthorized, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid session token", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}
