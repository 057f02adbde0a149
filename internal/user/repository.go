package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/enrollhq/enroll-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// NewUser carries the already-hashed, already-validated fields for an insert.
type NewUser struct {
	Email        string
	PasswordHash string
	SSNHash      string
	FirstName    string
	LastName     string
	Phone        string
	DateOfBirth  time.Time
	Address      string
	City         string
	State        string
	ZipCode      string
}

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The unique constraint on email is authoritative:
// a concurrent signup that slipped past the service's existence check still
// surfaces here as ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, nu NewUser) (*User, error) {
	dbUser := &database.User{
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		SSNHash:      nu.SSNHash,
		FirstName:    nu.FirstName,
		LastName:     nu.LastName,
		Phone:        nu.Phone,
		DateOfBirth:  nu.DateOfBirth,
		Address:      nu.Address,
		City:         nu.City,
		State:        nu.State,
		ZipCode:      nu.ZipCode,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email. Callers pass the normalized
// (trimmed, lowercased) form.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		Email:        dbu.Email,
		PasswordHash: dbu.PasswordHash,
		SSNHash:      dbu.SSNHash,
		FirstName:    dbu.FirstName,
		LastName:     dbu.LastName,
		Phone:        dbu.Phone,
		DateOfBirth:  dbu.DateOfBirth,
		Address:      dbu.Address,
		City:         dbu.City,
		State:        dbu.State,
		ZipCode:      dbu.ZipCode,
		CreatedAt:    dbu.CreatedAt,
		UpdatedAt:    dbu.UpdatedAt,
	}
}
