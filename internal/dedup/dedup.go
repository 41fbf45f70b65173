// Package dedup suppresses repeat deliveries of the same alert identity
// across engine invocations. Derivation is stateless and happily re-emits
// identical alerts batch after batch; this Redis-backed gate makes sure a
// user only gets pinged once per identity within the TTL window.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator gates alert delivery on a Redis TTL key.
// Nil-safe: a nil Deduplicator always allows delivery.
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a deduplicator. Returns nil when addr is empty (dedup
// disabled — every delivery is allowed).
func New(addr, password string, ttl time.Duration) *Deduplicator {
	if addr == "" {
		return nil
	}
	return &Deduplicator{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		ttl:    ttl,
	}
}

// ShouldDeliver reports whether this (user, alert) identity has not been
// delivered within the TTL window, and claims the window if so. SET NX makes
// check-and-claim atomic across concurrent dispatchers.
func (d *Deduplicator) ShouldDeliver(ctx context.Context, userID, alertID string) (bool, error) {
	if d == nil {
		return true, nil
	}
	key := fmt.Sprintf("alert:dedup:%s:%s", userID, alertID)
	ok, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	return ok, nil
}

// Clear removes a dedup entry (for testing).
func (d *Deduplicator) Clear(ctx context.Context, userID, alertID string) error {
	if d == nil {
		return nil
	}
	return d.client.Del(ctx, fmt.Sprintf("alert:dedup:%s:%s", userID, alertID)).Err()
}

// Ping verifies Redis connectivity.
func (d *Deduplicator) Ping(ctx context.Context) error {
	if d == nil {
		return nil
	}
	return d.client.Ping(ctx).Err()
}
