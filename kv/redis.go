package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const updateMaxRetries = 4

// RedisStore implements [Store] on top of a go-redis universal client.
// TTL expiry, prefix scans, and optimistic updates map directly onto
// SET PX, SCAN, and WATCH/MULTI.
type RedisStore struct {
	redis redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client. The caller owns the client's
// lifecycle; the store never closes it.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{redis: client}
}

// Get returns the value at key, or [ErrNotFound] when the key is absent or
// its TTL has lapsed.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

// Set writes value at key. ttl > 0 arms per-entry expiry; ttl <= 0 persists
// the entry until deleted.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// List returns all keys under prefix via cursor SCAN. This is an O(n)
// operation intended for revocation sweeps, not request hot paths.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)

	for {
		batch, next, err := s.redis.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}

	return keys, nil
}

// Update runs fn under WATCH/MULTI optimistic concurrency control and retries
// a bounded number of times on contention. A nil next value from fn makes the
// pass read-only and always succeeds without writing.
func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for i := 0; i < updateMaxRetries; i++ {
		var fnErr error

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			current, err := tx.Get(ctx, key).Bytes()
			exists := true
			if err != nil {
				if !errors.Is(err, redis.Nil) {
					return err
				}
				current, exists = nil, false
			}

			next, ttl, err := fn(current, exists)
			if err != nil {
				fnErr = err
				return err
			}
			if next == nil {
				return nil
			}
			if ttl < 0 {
				ttl = 0
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, next, ttl)
				return nil
			})
			return err
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if fnErr != nil {
			return fnErr
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	}

	return ErrConflict
}

// Ping reports point-in-time backend availability and latency.
func (s *RedisStore) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
