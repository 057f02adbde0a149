package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRedisRepository handles session persistence in Redis.
// Layout: one hash per session keyed by token hash, plus a per-user pointer
// key naming the live token. Both keys expire with the token, so stale
// sessions clean themselves up without a sweep.
type SessionRedisRepository struct {
	client *redis.Client
}

func NewSessionRedisRepository(client *redis.Client) *SessionRedisRepository {
	return &SessionRedisRepository{client: client}
}

// getSessionKey generates the Redis key for a session record
func getSessionKey(tokenHash string) string {
	return fmt.Sprintf("session:%s", tokenHash)
}

// getUserSessionKey generates the Redis key for the user's live-token pointer
func getUserSessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("session_user:%s", userID.String())
}

// Replace installs a new session for the user, dropping the previous one.
// The old-token delete and the new writes go through one pipeline, so the
// pointer key always names the surviving session.
func (r *SessionRedisRepository) Replace(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session expiration time is in the past")
	}

	tokenHash := hashToken(token)
	userKey := getUserSessionKey(userID)

	// Find the session being superseded, if any
	oldHash, err := r.client.Get(ctx, userKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to look up prior session: %w", err)
	}

	pipe := r.client.TxPipeline()

	if oldHash != "" && oldHash != tokenHash {
		pipe.Del(ctx, getSessionKey(oldHash))
	}

	sessionKey := getSessionKey(tokenHash)
	pipe.HSet(ctx, sessionKey, map[string]interface{}{
		"user_id":    userID.String(),
		"expires_at": expiresAt.Unix(),
		"created_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, sessionKey, ttl)
	pipe.Set(ctx, userKey, tokenHash, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}

	return nil
}

// GetByToken retrieves the session backing a raw token
func (r *SessionRedisRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	tokenHash := hashToken(token)

	data, err := r.client.HGetAll(ctx, getSessionKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}

	userID, err := uuid.Parse(data["user_id"])
	if err != nil {
		return nil, fmt.Errorf("malformed session record: %w", err)
	}

	expiresAtUnix, _ := strconv.ParseInt(data["expires_at"], 10, 64)
	createdAtUnix, _ := strconv.ParseInt(data["created_at"], 10, 64)

	return &Session{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: time.Unix(expiresAtUnix, 0),
		CreatedAt: time.Unix(createdAtUnix, 0),
	}, nil
}

// DeleteByToken removes the session matching the raw token
func (r *SessionRedisRepository) DeleteByToken(ctx context.Context, token string) (bool, error) {
	tokenHash := hashToken(token)
	sessionKey := getSessionKey(tokenHash)

	// Need the owner to clear the pointer key as well
	userIDStr, err := r.client.HGet(ctx, sessionKey, "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get session owner: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKey)
	if userID, parseErr := uuid.Parse(userIDStr); parseErr == nil {
		// Only clear the pointer if it still names this token; a concurrent
		// replace may have moved it
		userKey := getUserSessionKey(userID)
		current, getErr := r.client.Get(ctx, userKey).Result()
		if getErr == nil && current == tokenHash {
			pipe.Del(ctx, userKey)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	return true, nil
}

// DeleteByUser removes the user's session, if any
func (r *SessionRedisRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	userKey := getUserSessionKey(userID)

	tokenHash, err := r.client.Get(ctx, userKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up user session: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, getSessionKey(tokenHash))
	pipe.Del(ctx, userKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to delete user session: %w", err)
	}

	return 1, nil
}
