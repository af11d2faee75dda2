package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned when the lock is already owned by another caller.
var ErrHeld = errors.New("lock already held")

// Releaser releases a previously acquired lock.
type Releaser func(ctx context.Context) error

// Locker provides per-key mutual exclusion for draw operations.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Releaser, error)
}

// compare-and-delete so a lock that expired and was re-acquired by another
// owner is never released by the first one.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// RedisLocker implements Locker with SET NX PX semantics.
type RedisLocker struct {
	client *redis.Client
	prefix string
}

// NewRedisLocker builds a locker with the given key prefix.
func NewRedisLocker(client *redis.Client, prefix string) *RedisLocker {
	if prefix == "" {
		prefix = "lock:"
	}
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire takes the lock for key, failing with ErrHeld when another owner
// holds it. The TTL bounds lock lifetime so a crashed holder cannot wedge
// draws forever.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (Releaser, error) {
	token := uuid.NewString()
	full := l.prefix + key

	ok, err := l.client.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}

	release := func(ctx context.Context) error {
		return l.client.Eval(ctx, releaseScript, []string{full}, token).Err()
	}
	return release, nil
}
