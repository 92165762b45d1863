package identity

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationList reads the access-token blacklist kept in Redis. The
// token issuer (logout) writes it under the same "blacklist:access:" keys;
// this service only calls Revoke from tests and tooling.
type RedisRevocationList struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocationList returns a list backed by client. A nil client gives
// a list that revokes nothing.
func NewRedisRevocationList(client *redis.Client, prefix string) *RedisRevocationList {
	if prefix == "" {
		prefix = "blacklist:access:"
	}
	return &RedisRevocationList{client: client, prefix: prefix}
}

// Revoke stores raw for ttl. Without a client this is a no-op.
func (l *RedisRevocationList) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if l == nil || l.client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return l.client.Set(ctx, l.prefix+raw, "1", ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if l == nil || l.client == nil {
		return false, nil
	}
	n, err := l.client.Exists(ctx, l.prefix+raw).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
