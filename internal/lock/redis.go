package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// releaseScript deletes the key only if it still carries our token, so an
// expired lock taken over by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a Locker backed by a single Redis node.
//
// The lock expires after TTL even if the holder crashes; TTL must exceed the
// longest transaction it guards.
type RedisLocker struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
	// Retry is the polling interval while the key is held elsewhere.
	Retry time.Duration
}

// NewRedisLocker parses a redis:// URL and returns a ready locker.
func NewRedisLocker(url string, ttl time.Duration) (*RedisLocker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisLocker{
		Client: redis.NewClient(opts),
		Prefix: "lock:",
		TTL:    ttl,
		Retry:  25 * time.Millisecond,
	}, nil
}

// Ping verifies connectivity.
func (r *RedisLocker) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RedisLocker) Close() error { return r.Client.Close() }

// Acquire implements Locker.
func (r *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	ttl := r.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	retry := r.Retry
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	full := r.Prefix + key
	token := uuid.NewString()

	t := time.NewTicker(retry)
	defer t.Stop()
	for {
		ok, err := r.Client.SetNX(ctx, full, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Join(ErrNotAcquired, ctx.Err())
			}
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrNotAcquired, ctx.Err())
		case <-t.C:
		}
	}

	return func() {
		// Release with a fresh context: the caller's may already be cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, r.Client, []string{full}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", full).Msg("redis lock release failed")
		}
	}, nil
}
