package auth

import (
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "session"

// SetSessionCookie attaches the session token to the response. The max-age
// equals the token's own validity window, so the cookie can never outlive
// the token it carries.
func SetSessionCookie(w http.ResponseWriter, token string, isProduction bool, validity time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(validity.Seconds()),
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearSessionCookie expires the session cookie immediately. Called on every
// logout regardless of whether a store-side session existed.
func ClearSessionCookie(w http.ResponseWriter, isProduction bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// RequestCookieReader extracts a named cookie value from a request. Two
// implementations cover the two transport shapes that show up in practice:
// requests whose cookies net/http has already parsed, and raw Cookie
// headers from proxies or test harnesses that need manual splitting.
type RequestCookieReader interface {
	Cookie(r *http.Request, name string) (string, error)
}

// ParsedCookieReader reads cookies through net/http's parser
type ParsedCookieReader struct{}

func (ParsedCookieReader) Cookie(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// RawHeaderCookieReader splits the Cookie header by hand. Kept for callers
// that hand over a raw header string without going through net/http's
// request parsing.
type RawHeaderCookieReader struct{}

func (RawHeaderCookieReader) Cookie(r *http.Request, name string) (string, error) {
	header := r.Header.Get("Cookie")
	if header == "" {
		return "", http.ErrNoCookie
	}

	for _, pair := range strings.Split(header, "; ") {
		key, value, found := strings.Cut(pair, "=")
		if found && key == name {
			return value, nil
		}
	}

	return "", http.ErrNoCookie
}

// SessionTokenFromRequest resolves the session token using the given reader
func SessionTokenFromRequest(reader RequestCookieReader, r *http.Request) (string, error) {
	return reader.Cookie(r, SessionCookieName)
}
