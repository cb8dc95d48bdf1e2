package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/directory/pkg/cryptox"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "directory:session:"

// Redis is a Registry shared by every instance pointed at the same server.
// Keys expire with the session, so nothing needs sweeping. Keys hold the
// fingerprint of the session id, never the id itself.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(sid string) string { return r.prefix + cryptox.FingerprintToken(sid) }

func (r *Redis) Register(ctx context.Context, sid, userID string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("sessions: ttl must be positive, got %s", ttl)
	}
	if err := r.client.Set(ctx, r.key(sid), userID, ttl).Err(); err != nil {
		return fmt.Errorf("sessions: register: %w", err)
	}
	return nil
}

func (r *Redis) Active(ctx context.Context, sid string) (bool, error) {
	err := r.client.Get(ctx, r.key(sid)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sessions: lookup: %w", err)
	}
	return true, nil
}

func (r *Redis) Revoke(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, r.key(sid)).Err(); err != nil {
		return fmt.Errorf("sessions: revoke: %w", err)
	}
	return nil
}

// Ping checks the connection to the server.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
