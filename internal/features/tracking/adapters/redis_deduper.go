package adapters

import (
	"context"
	"fmt"
	"time"

	"riderpro/internal/core/cache"
)

const dedupKeyPrefix = "ingest:dedup:"

// RedisDeduper implements ports.Deduper with a SETNX fast path. Offline
// clients retry whole batches after timeouts; remembering recently seen
// tuples here keeps those retries off the database. The TTL only needs to
// cover the client retry window, the unique constraint is the real guarantee.
type RedisDeduper struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewRedisDeduper creates a new RedisDeduper.
func NewRedisDeduper(c cache.Cache, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{cache: c, ttl: ttl}
}

// FirstSeen returns true the first time a dedup key is offered within the TTL.
func (d *RedisDeduper) FirstSeen(ctx context.Context, key string) (bool, error) {
	ok, err := d.cache.SetNX(ctx, dedupKeyPrefix+key, []byte("1"), d.ttl)
	if err != nil {
		return false, fmt.Errorf("dedup: %w", err)
	}
	return ok, nil
}

// Forget releases a claimed key so a retried upload reaches storage again.
func (d *RedisDeduper) Forget(ctx context.Context, key string) error {
	if err := d.cache.Delete(ctx, dedupKeyPrefix+key); err != nil {
		return fmt.Errorf("dedup: %w", err)
	}
	return nil
}
