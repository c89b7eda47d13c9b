package ratelimit

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"time"

	"github.com/veilauth/veil/kv"
)

const counterVersionV1 = 1

const defaultPrefix = "rl"

// Decision is the outcome of one Allow call. ResetAt and RetryAfter let
// callers populate rate-limit response headers.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter enforces fixed-window budgets per (scope, client). Safe for
// concurrent use; counter updates go through the store's compare-and-set.
type Limiter struct {
	kv     kv.Store
	prefix string
	now    func() time.Time
}

// NewLimiter builds a limiter on the given kv handle.
func NewLimiter(store kv.Store, prefix string) *Limiter {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Limiter{kv: store, prefix: prefix, now: time.Now}
}

func (l *Limiter) key(policy Policy, client string) string {
	return l.prefix + ":" + policy.Scope + ":" + client
}

// Allow consumes one request from the client's budget under policy and
// reports the decision. Rejections do not mutate the counter.
func (l *Limiter) Allow(ctx context.Context, policy Policy, client string) (Decision, error) {
	var decision Decision

	err := l.kv.Update(ctx, l.key(policy, client), func(current []byte, exists bool) ([]byte, time.Duration, error) {
		now := l.now()

		if exists {
			count, resetAt, err := decodeCounter(current)
			// A corrupt counter is treated like a lapsed window and
			// overwritten rather than wedging the route.
			if err == nil && !now.After(resetAt) {
				if count >= uint32(policy.MaxRequests) {
					decision = rejected(policy, resetAt, now)
					return nil, 0, nil
				}
				count++
				decision = granted(policy, count, resetAt)
				return encodeCounter(count, resetAt), resetAt.Sub(now), nil
			}
		}

		resetAt := now.Add(policy.Window)
		decision = granted(policy, 1, resetAt)
		return encodeCounter(1, resetAt), policy.Window, nil
	})
	if err != nil {
		return Decision{}, err
	}

	return decision, nil
}

func granted(policy Policy, count uint32, resetAt time.Time) Decision {
	remaining := policy.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   true,
		Limit:     policy.MaxRequests,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

func rejected(policy Policy, resetAt time.Time, now time.Time) Decision {
	wait := resetAt.Sub(now)
	// Retry-After is whole seconds, rounded up, never less than one.
	retryAfter := wait.Truncate(time.Second)
	if retryAfter < wait {
		retryAfter += time.Second
	}
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return Decision{
		Allowed:    false,
		Limit:      policy.MaxRequests,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
	}
}

func encodeCounter(count uint32, resetAt time.Time) []byte {
	var buf bytes.Buffer
	buf.WriteByte(counterVersionV1)
	_ = binary.Write(&buf, binary.BigEndian, count)
	_ = binary.Write(&buf, binary.BigEndian, resetAt.UnixMilli())
	return buf.Bytes()
}

func decodeCounter(data []byte) (uint32, time.Time, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil || version != counterVersionV1 {
		return 0, time.Time{}, errors.New("ratelimit: counter corrupt")
	}

	var count uint32
	if err := binary.Read(reader, binary.BigEndian, &count); err != nil {
		return 0, time.Time{}, errors.New("ratelimit: counter corrupt")
	}
	var resetMilli int64
	if err := binary.Read(reader, binary.BigEndian, &resetMilli); err != nil {
		return 0, time.Time{}, errors.New("ratelimit: counter corrupt")
	}

	return count, time.UnixMilli(resetMilli), nil
}
