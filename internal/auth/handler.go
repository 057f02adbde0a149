package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/enrollhq/enroll-api/internal/httputil"
	"github.com/enrollhq/enroll-api/internal/logging"
	"github.com/enrollhq/enroll-api/internal/user"
)

// RateLimiter is the request-budget surface the handlers consume; the Redis
// limiter in internal/ratelimit is the production implementation.
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
}

// Handler contains HTTP handlers for the registration and session endpoints
type Handler struct {
	service       *Service
	rateLimiter   RateLimiter
	logger        *logging.Logger
	cookies       RequestCookieReader
	isProduction  bool
	tokenDuration time.Duration
}

func NewHandler(
	service *Service,
	rateLimiter RateLimiter,
	logger *logging.Logger,
	cookies RequestCookieReader,
	isProduction bool,
	tokenDuration time.Duration,
) *Handler {
	return &Handler{
		service:       service,
		rateLimiter:   rateLimiter,
		logger:        logger,
		cookies:       cookies,
		isProduction:  isProduction,
		tokenDuration: tokenDuration,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by signup and login. The token is also set as the
// session cookie; non-browser clients read it from the body.
type AuthResponse struct {
	User         *user.User `json:"user"`
	SessionToken string     `json:"session_token"`
}

// LogoutResponse distinguishes "logged out" from "was already logged out".
// Both are success: the caller ends up unauthenticated either way.
type LogoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ValidationErrorResponse carries per-field validation failures
type ValidationErrorResponse struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Fields []FieldError `json:"fields"`
}

// Signup handles user registration
// @Summary      Register a new account
// @Description  Create an account from the full registration payload and start a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupInput true "Registration fields"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} ValidationErrorResponse "Validation error"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitExceeded(w, r, "signup") {
		return
	}

	var req SignupInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	newUser, token, err := h.service.Signup(r.Context(), req)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			logger.Warn("signup failed: validation error", "fields", verrs.Error())
			httputil.RespondJSON(w, ValidationErrorResponse{
				Error:  "validation failed",
				Code:   httputil.CodeValidationError,
				Fields: verrs,
			}, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("signup failed: email already exists")
			httputil.RespondErrorWithCode(w, "user already exists", httputil.CodeConflict, http.StatusConflict)
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user signed up", "user_id", newUser.ID)

	SetSessionCookie(w, token, h.isProduction, h.tokenDuration)
	httputil.RespondJSON(w, AuthResponse{User: newUser, SessionToken: token}, http.StatusCreated)
}

// Login handles user login
// @Summary      Log in
// @Description  Authenticate with email and password; any prior session for the account is replaced
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.limitExceeded(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	loggedIn, token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// Same message for unknown email and wrong password
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in", "user_id", loggedIn.ID)

	SetSessionCookie(w, token, h.isProduction, h.tokenDuration)
	httputil.RespondJSON(w, AuthResponse{User: loggedIn, SessionToken: token}, http.StatusOK)
}

// Logout handles session termination
// @Summary      Log out
// @Description  Remove the caller's session and clear the cookie. Succeeds whether or not a session existed.
// @Tags         auth
// @Produce      json
// @Success      200 {object} LogoutResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	token, err := SessionTokenFromRequest(h.cookies, r)
	if err != nil {
		token = ""
	}

	found, err := h.service.Logout(r.Context(), token)
	if err != nil {
		// Still clear the cookie; the client ends up logged out locally
		// even when the store is unreachable
		logger.Error("logout failed: store error", "error", err.Error())
		ClearSessionCookie(w, h.isProduction)
		httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	ClearSessionCookie(w, h.isProduction)

	if !found {
		logger.Info("logout with no active session")
		httputil.RespondJSON(w, LogoutResponse{Success: true, Message: "no active session"}, http.StatusOK)
		return
	}

	logger.Info("user logged out")
	httputil.RespondJSON(w, LogoutResponse{Success: true, Message: "logged out"}, http.StatusOK)
}

// Me returns the authenticated user's profile
// @Summary      Current user
// @Description  Return the account for the active session, credential fields stripped
// @Tags         auth
// @Produce      json
// @Success      200 {object} user.User
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Router       /me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeUnauthorized, http.StatusUnauthorized)
		return
	}

	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondErrorWithCode(w, "invalid session token", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to load user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "something went wrong", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}

// limitExceeded applies the IP rate limit for the endpoint and writes the
// 429 itself when the caller is over budget. Limiter errors are logged and
// waved through rather than blocking legitimate traffic.
func (h *Handler) limitExceeded(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())
	ip := getClientIP(r)

	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
