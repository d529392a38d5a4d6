package repository

import (
	"context"
	"time"
)

// KVStore abstracts ephemeral key-value state with per-entry TTLs.
// Implementations: Redis (production) or in-memory (local dev / tests).
//
// An entry whose TTL has elapsed is absent regardless of whether it has been
// physically removed yet. Get reports absence as (nil, nil); callers treat a
// non-nil error as absence too, so a down backend degrades reads rather than
// failing requests.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// IncrBy atomically adjusts the integer counter at key by delta and
	// returns the new value together with the entry's expiry. When the
	// increment creates the entry, ttl is armed in the same operation; an
	// existing entry keeps its original expiry. There is deliberately no
	// separate read-then-write path here: counters shared across concurrent
	// requests must not lose updates.
	IncrBy(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, time.Time, error)
}
