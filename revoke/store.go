package revoke

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/veilauth/veil/kv"
)

// ErrNotFound is returned when no live record backs the presented refresh
// token: it was revoked, rotated away, or simply expired.
var ErrNotFound = errors.New("revoke: refresh token not found")

const defaultPrefix = "vr"

// Store persists blacklist entries and refresh-token records. All methods
// are safe to invoke concurrently across independent keys.
type Store struct {
	kv     kv.Store
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore builds a revocation store on the given kv handle. A nil logger
// silences partial-failure reporting.
func NewStore(store kv.Store, prefix string, logger *slog.Logger) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		kv:     store,
		prefix: prefix,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Store) blacklistKey(tokenID string) string {
	return s.prefix + ":bl:" + tokenID
}

func (s *Store) refreshKey(userID, tokenID string) string {
	return s.userPrefix(userID) + tokenID
}

func (s *Store) userPrefix(userID string) string {
	return s.prefix + ":rt:" + userID + ":"
}

// Blacklist records tokenID as revoked until expiresAt. The entry's TTL
// equals the token's remaining lifetime, so it disappears exactly when the
// token would have stopped verifying anyway. An already-expired expiresAt is
// a no-op.
func (s *Store) Blacklist(ctx context.Context, tokenID string, expiresAt time.Time) error {
	now := s.now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}

	data, err := encodeBlacklistEntry(&BlacklistEntry{
		BlacklistedAt: now.Unix(),
		ExpiresAt:     expiresAt.Unix(),
	})
	if err != nil {
		return err
	}

	return s.kv.Set(ctx, s.blacklistKey(tokenID), data, ttl)
}

// IsBlacklisted reports whether tokenID currently has a live blacklist entry.
// Absence after TTL lapse is indistinguishable from never-blacklisted.
func (s *Store) IsBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	data, err := s.kv.Get(ctx, s.blacklistKey(tokenID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	entry, err := decodeBlacklistEntry(data)
	if err != nil {
		return false, err
	}

	return s.now().Unix() <= entry.ExpiresAt, nil
}

// SaveRefreshToken creates the server-side record backing a freshly minted
// refresh token, keyed by (userID, tokenID), TTL mirroring token expiry.
func (s *Store) SaveRefreshToken(ctx context.Context, userID, tokenID string, expiresAt time.Time) error {
	now := s.now()
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return nil
	}

	data, err := encodeRefreshRecord(&RefreshTokenRecord{
		TokenID:   tokenID,
		UserID:    userID,
		CreatedAt: now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return err
	}

	return s.kv.Set(ctx, s.refreshKey(userID, tokenID), data, ttl)
}

// VerifyRefreshToken returns the live record for (userID, tokenID), or
// [ErrNotFound] when none exists. A record past its embedded expiry is
// treated as absent and lazily removed.
func (s *Store) VerifyRefreshToken(ctx context.Context, userID, tokenID string) (*RefreshTokenRecord, error) {
	data, err := s.kv.Get(ctx, s.refreshKey(userID, tokenID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	record, err := decodeRefreshRecord(data)
	if err != nil {
		return nil, err
	}

	if s.now().Unix() > record.ExpiresAt {
		if delErr := s.kv.Delete(ctx, s.refreshKey(userID, tokenID)); delErr != nil {
			s.logger.Warn("stale refresh record cleanup failed",
				"user_id", userID, "error", delErr)
		}
		return nil, ErrNotFound
	}

	return record, nil
}

// RevokeRefreshToken deletes one record. Revoking an absent token is not an
// error.
func (s *Store) RevokeRefreshToken(ctx context.Context, userID, tokenID string) error {
	return s.kv.Delete(ctx, s.refreshKey(userID, tokenID))
}

// RevokeAllUserTokens deletes every refresh record under the user's prefix.
// Deletes run concurrently and are NOT transactionally linked: a failure
// partway through leaves a partial revocation. Failures are logged and the
// call still reports the number of records it removed, because blocking a
// user-visible logout on a stray delete error helps nobody.
func (s *Store) RevokeAllUserTokens(ctx context.Context, userID string) (int, error) {
	keys, err := s.kv.List(ctx, s.userPrefix(userID))
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	var (
		wg      sync.WaitGroup
		revoked atomic.Int64
		failed  atomic.Int64
	)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := s.kv.Delete(ctx, key); err != nil {
				failed.Add(1)
				s.logger.Warn("refresh record delete failed during bulk revocation",
					"user_id", userID, "error", err)
				return
			}
			revoked.Add(1)
		}(key)
	}
	wg.Wait()

	if n := failed.Load(); n > 0 {
		s.logger.Warn("bulk revocation incomplete",
			"user_id", userID, "failed", n, "revoked", revoked.Load())
	}

	return int(revoked.Load()), nil
}
