package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the users table row. Email carries a unique constraint; it is the
// source of truth for duplicate detection, the application-level lookup is
// only a fast path.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	SSNHash      string    `bun:"ssn_hash,notnull"`
	FirstName    string    `bun:"first_name,notnull"`
	LastName     string    `bun:"last_name,notnull"`
	Phone        string    `bun:"phone,notnull"`
	DateOfBirth  time.Time `bun:"date_of_birth,notnull"`
	Address      string    `bun:"address,notnull"`
	City         string    `bun:"city,notnull"`
	State        string    `bun:"state,notnull"`
	ZipCode      string    `bun:"zip_code,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Session is the sessions table row. user_id is unique: the store itself
// enforces at most one active session per user, independent of the
// application-level replace procedure.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    uuid.UUID `bun:"user_id,notnull,unique,type:uuid"`
	TokenHash string    `bun:"token_hash,notnull,unique"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
