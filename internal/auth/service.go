package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/enrollhq/enroll-api/internal/logging"
	"github.com/enrollhq/enroll-api/internal/user"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// UserRepository is the user persistence surface the service depends on
type UserRepository interface {
	Create(ctx context.Context, nu user.NewUser) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// SignupInput is the full registration payload as received from the client
type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
	SSN         string `json:"ssn"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
}

// Service handles account and session lifecycle business logic
type Service struct {
	users         UserRepository
	sessions      SessionRepository
	hasher        *Hasher
	tokens        TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	users UserRepository,
	sessions SessionRepository,
	hasher *Hasher,
	tokens TokenService,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		users:         users,
		sessions:      sessions,
		hasher:        hasher,
		tokens:        tokens,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Signup creates a new account and logs it in, returning the created user
// (credential hashes stripped) and the raw session token.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*user.User, string, error) {
	if errs := ValidateSignup(in); len(errs) > 0 {
		return nil, "", errs
	}

	email := NormalizeEmail(in.Email)

	// Fast-path duplicate check. The unique constraint on the insert below
	// is what actually closes the race between two concurrent signups.
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	// SSN is hashed with the same cost as the password; it never exists in
	// plaintext past this point.
	ssnHash, err := s.hasher.Hash(in.SSN)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash ssn: %w", err)
	}

	dob, err := time.Parse("2006-01-02", in.DateOfBirth)
	if err != nil {
		// Unreachable after validation, but don't insert garbage
		return nil, "", fmt.Errorf("failed to parse date of birth: %w", err)
	}

	newUser, err := s.users.Create(ctx, user.NewUser{
		Email:        email,
		PasswordHash: passwordHash,
		SSNHash:      ssnHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		DateOfBirth:  dob,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, "", user.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.CreateSession(ctx, newUser.ID)
	if err != nil {
		// The user row exists without a session. The account is usable;
		// the right recovery for the caller is login, not another signup.
		s.logger.Error("session creation failed after signup", "user_id", newUser.ID, "error", err.Error())
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return newUser.Sanitized(), token, nil
}

// Login authenticates a user and replaces any existing session. Unknown
// email and wrong password produce the same error, so callers learn nothing
// about which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	existingUser, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.CreateSession(ctx, existingUser.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create session: %w", err)
	}

	return existingUser.Sanitized(), token, nil
}

// CreateSession issues a token and installs it as the user's only session
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	token, err := s.tokens.CreateToken(userID, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	expiresAt := time.Now().Add(s.tokenDuration)
	if err := s.sessions.Replace(ctx, userID, token, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Logout removes the session backing the token. The bool reports whether a
// session actually existed, so the caller can tell "logged out" from "was
// already logged out"; neither is an error.
func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	found, err := s.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	return found, nil
}

// LogoutUser removes every session for the user id, returning the count
func (s *Service) LogoutUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	removed, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return removed, nil
}

// GetUser returns the sanitized user for an authenticated id
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}
