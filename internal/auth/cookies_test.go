package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok-123", true, 24*time.Hour)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Equal(t, "tok-123", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	// Cookie lifetime tracks the token's validity window
	assert.Equal(t, int((24 * time.Hour).Seconds()), c.MaxAge)
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0, "clearing must expire the cookie immediately")
}

func TestCookieReaders_Parity(t *testing.T) {
	readers := map[string]RequestCookieReader{
		"parsed": ParsedCookieReader{},
		"raw":    RawHeaderCookieReader{},
	}

	for name, reader := range readers {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			r.Header.Set("Cookie", "theme=dark; session=tok-456; lang=en")

			token, err := SessionTokenFromRequest(reader, r)
			require.NoError(t, err)
			assert.Equal(t, "tok-456", token)
		})
	}
}

func TestCookieReaders_Missing(t *testing.T) {
	readers := map[string]RequestCookieReader{
		"parsed": ParsedCookieReader{},
		"raw":    RawHeaderCookieReader{},
	}

	for name, reader := range readers {
		t.Run(name+"/no header", func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			_, err := SessionTokenFromRequest(reader, r)
			assert.ErrorIs(t, err, http.ErrNoCookie)
		})

		t.Run(name+"/other cookies only", func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			r.Header.Set("Cookie", "theme=dark; lang=en")
			_, err := SessionTokenFromRequest(reader, r)
			assert.ErrorIs(t, err, http.ErrNoCookie)
		})
	}
}
