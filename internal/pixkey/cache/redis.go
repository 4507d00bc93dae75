package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pixkeys/internal/pixkey/models"
	id "pixkeys/pkg/domain"
	"pixkeys/pkg/platform/sentinel"
)

const (
	keyPrefix   = "pix:key:"
	guardPrefix = "pix:key-guard:"
	defaultTTL  = 5 * time.Minute

	// defaultGuard must outlast the slowest store read a resolver can have in
	// flight when the key changes.
	defaultGuard = 10 * time.Second
)

// fillScript writes the snapshot unless the key was invalidated within the
// guard window.
var fillScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// RedisCache is a read-through cache of keys by id. Entries are JSON
// snapshots with a TTL; the engine invalidates them on every change.
//
// A resolver may read a key from the store just before a change commits and
// fill the cache just after the engine invalidated it. Invalidate therefore
// leaves a guard entry that makes Set a no-op for the guard window, so a
// snapshot older than the last change is never written back.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	guard  time.Duration
}

type Option func(*RedisCache)

// WithTTL bounds how long a snapshot may be served. Non-positive values keep
// the default. Staleness after a change is handled by the invalidation guard,
// not by the TTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInvalidationGuard sets how long Set is suppressed after Invalidate.
// Non-positive values keep the default.
func WithInvalidationGuard(d time.Duration) Option {
	return func(c *RedisCache) {
		if d > 0 {
			c.guard = d
		}
	}
}

func NewRedis(client *redis.Client, opts ...Option) *RedisCache {
	c := &RedisCache{client: client, ttl: defaultTTL, guard: defaultGuard}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func cacheKey(keyID id.PixKeyID) string {
	return keyPrefix + keyID.String()
}

func guardKey(keyID id.PixKeyID) string {
	return guardPrefix + keyID.String()
}

// Get returns sentinel.ErrNotFound on a miss.
func (c *RedisCache) Get(ctx context.Context, keyID id.PixKeyID) (*models.PixKey, error) {
	data, err := c.client.Get(ctx, cacheKey(keyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(data)
}

func (c *RedisCache) Set(ctx context.Context, key *models.PixKey) error {
	data, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("encode pix key: %w", err)
	}
	keys := []string{cacheKey(key.ID), guardKey(key.ID)}
	if err := fillScript.Run(ctx, c.client, keys, data, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate drops the snapshot and opens the guard window in one round trip.
func (c *RedisCache) Invalidate(ctx context.Context, keyID id.PixKeyID) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(keyID))
		pipe.Set(ctx, guardKey(keyID), 1, c.guard)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate: %w", err)
	}
	return nil
}

func decode(data []byte) (*models.PixKey, error) {
	var key models.PixKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("decode cached pix key: %w", err)
	}
	return &key, nil
}
