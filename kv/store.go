package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the requested key does not exist or its
	// entry has already expired. The two states are indistinguishable.
	ErrNotFound = errors.New("kv: key not found")
	// ErrUnavailable wraps backend transport failures.
	ErrUnavailable = errors.New("kv: store unavailable")
	// ErrConflict is returned when an optimistic Update loses the race more
	// times than the retry budget allows.
	ErrConflict = errors.New("kv: update conflict")
)

// UpdateFunc computes the next value for a key under optimistic concurrency
// control. current is nil when exists is false. Returning a nil next value
// skips the write entirely (read-only decision). The returned TTL applies to
// the written value; ttl <= 0 keeps the entry without expiry.
type UpdateFunc func(current []byte, exists bool) (next []byte, ttl time.Duration, err error)

// Store is the key-value contract consumed by the session-security core:
// point get/set/delete, prefix-scoped listing, per-entry TTL expiry, and a
// compare-and-set Update for read-modify-write callers.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
