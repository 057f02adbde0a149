package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMiddleware(t *testing.T, sessions SessionRepository) *Middleware {
	t.Helper()
	tokens, err := NewPasetoService(testKey())
	require.NoError(t, err)
	return NewMiddleware(tokens, sessions, ParsedCookieReader{})
}

func authedRequest(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	}
	return r
}

func TestRequireAuth_ValidSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	mw := newTestMiddleware(t, sessions)

	tokens, err := NewPasetoService(testKey())
	require.NoError(t, err)

	userID := uuid.New()
	token, err := tokens.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, sessions.Replace(context.Background(), userID, token, time.Now().Add(time.Hour)))

	var gotID uuid.UUID
	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = GetUserIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, authedRequest(token))

	require.True(t, called, "next handler not reached")
	assert.Equal(t, userID, gotID)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	sessions := newFakeSessionRepo()
	mw := newTestMiddleware(t, sessions)

	tokens, err := NewPasetoService(testKey())
	require.NoError(t, err)

	userID := uuid.New()

	validNoSession, err := tokens.CreateToken(userID, time.Hour)
	require.NoError(t, err)

	expired, err := tokens.CreateToken(userID, -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"no cookie", ""},
		{"garbage token", "v4.local.garbage"},
		{"expired token", expired},
		{"verified token but session revoked", validNoSession},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run")
			})

			rec := httptest.NewRecorder()
			mw.RequireAuth(next).ServeHTTP(rec, authedRequest(tt.token))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuth_SupersededSession(t *testing.T) {
	// Logging in again replaces the session; the old token fails auth even
	// though its own expiry claim is still in the future
	sessions := newFakeSessionRepo()
	mw := newTestMiddleware(t, sessions)

	tokens, err := NewPasetoService(testKey())
	require.NoError(t, err)

	userID := uuid.New()
	oldToken, err := tokens.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, sessions.Replace(context.Background(), userID, oldToken, time.Now().Add(time.Hour)))

	newToken, err := tokens.CreateToken(userID, time.Hour)
	require.NoError(t, err)
	require.NoError(t, sessions.Replace(context.Background(), userID, newToken, time.Now().Add(time.Hour)))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, authedRequest(oldToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, authedRequest(newToken))
	assert.Equal(t, http.StatusOK, rec.Code)
}
