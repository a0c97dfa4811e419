package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionRegistry tracks live session ids per user in Redis so that all of a
// user's sessions can be revoked at once (account deactivation).
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRegistry builds a registry. Sessions expire alongside their
// access tokens.
func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRegistry{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("sessions:%s", userID)
}

// Register records a new session for the user.
func (r *SessionRegistry) Register(ctx context.Context, userID, sessionID string) error {
	if r.client == nil {
		return nil
	}
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, sessionKey(userID), sessionID)
	pipe.Expire(ctx, sessionKey(userID), r.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// IsActive reports whether the session is still registered.
func (r *SessionRegistry) IsActive(ctx context.Context, userID, sessionID string) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	return r.client.SIsMember(ctx, sessionKey(userID), sessionID).Result()
}

// Revoke removes a single session.
func (r *SessionRegistry) Revoke(ctx context.Context, userID, sessionID string) error {
	if r.client == nil {
		return nil
	}
	return r.client.SRem(ctx, sessionKey(userID), sessionID).Err()
}

// RevokeAll removes every live session for the user.
func (r *SessionRegistry) RevokeAll(ctx context.Context, userID string) error {
	if r.client == nil {
		return nil
	}
	return r.client.Del(ctx, sessionKey(userID)).Err()
}
