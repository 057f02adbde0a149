package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/enrollhq/enroll-api/internal/database"
)

// SessionDBRepository handles session persistence in Postgres
type SessionDBRepository struct {
	db *bun.DB
}

func NewSessionDBRepository(db *bun.DB) *SessionDBRepository {
	return &SessionDBRepository{db: db}
}

// Replace removes the user's existing sessions and inserts the new one in a
// single transaction. The unique index on user_id backs this up: even if two
// replaces race, the store never holds two rows for one user.
func (r *SessionDBRepository) Replace(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*database.Session)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete prior sessions: %w", err)
		}

		dbSession := &database.Session{
			UserID:    userID,
			TokenHash: hashToken(token),
			ExpiresAt: expiresAt,
		}
		if _, err := tx.NewInsert().
			Model(dbSession).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}

	return nil
}

// GetByToken retrieves the session backing a raw token
func (r *SessionDBRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	dbSession := new(database.Session)
	err := r.db.NewSelect().
		Model(dbSession).
		Where("token_hash = ?", hashToken(token)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &Session{
		UserID:    dbSession.UserID,
		TokenHash: dbSession.TokenHash,
		ExpiresAt: dbSession.ExpiresAt,
		CreatedAt: dbSession.CreatedAt,
	}, nil
}

// DeleteByToken removes the session matching the raw token
func (r *SessionDBRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	result, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("token_hash = ?", hashToken(token)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// DeleteByUser removes all sessions for a user
func (r *SessionDBRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.Session)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user sessions: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected, nil
}
