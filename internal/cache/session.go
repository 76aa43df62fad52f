package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gatehouse/gatehouse/internal/model"
)

// sessionPrefix is the Redis key prefix for session records.
const sessionPrefix = "session:"

// ErrSessionNotFound is returned when no record exists for a token digest.
var ErrSessionNotFound = errors.New("session not found")

// SaveSession stores a session record under the token digest with a TTL.
// The TTL bounds how long an abandoned record lingers in Redis; expiry
// rules themselves are enforced by the session manager.
func (c *Cache) SaveSession(ctx context.Context, tokenHash string, sess *model.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := c.client.Set(ctx, sessionKey(tokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession loads the session record for a token digest.
// Returns ErrSessionNotFound on a miss or a corrupted entry.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupted entry - drop it and treat as miss
		_ = c.client.Del(ctx, sessionKey(tokenHash)).Err()
		return nil, ErrSessionNotFound
	}

	return &sess, nil
}

// DeleteSession removes a session record. Deleting a missing record is not an error.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(tokenHash string) string {
	return sessionPrefix + tokenHash
}
