package veil

import (
	"context"
	"errors"

	"github.com/veilauth/veil/ratelimit"
	"github.com/veilauth/veil/revoke"
	"github.com/veilauth/veil/token"
	"github.com/veilauth/veil/totp"
)

// Engine orchestrates the session-security leaves: token minting, refresh
// rotation, revocation state, and the TOTP second factor. Construct it
// through [Builder.Build]; all methods are then safe for concurrent use.
type Engine struct {
	config      Config
	tokens      *token.Manager
	revocations *revoke.Store
	totp        *totp.Manager
	limiter     *ratelimit.Limiter
}

// Issue mints an access/refresh pair for subject and persists the refresh
// token's server-side record.
//
// The signed token and the record are two independent store operations: a
// crash between them leaves a token that verifies cryptographically but has
// no backing record. That failure is safe — Rotate treats it as invalid.
func (e *Engine) Issue(ctx context.Context, subject string, extra map[string]any) (*TokenPair, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if subject == "" {
		return nil, errors.New("subject required")
	}

	claims := token.Claims{"sub": subject}
	for k, v := range extra {
		claims[k] = v
	}

	access, err := e.tokens.CreateAccess(claims)
	if err != nil {
		return nil, err
	}

	refresh, err := e.tokens.CreateRefresh(claims)
	if err != nil {
		return nil, err
	}

	// The record expiry is the token's own exp instant, so the two halves
	// of a refresh token can never disagree about when it dies.
	if err := e.revocations.SaveRefreshToken(ctx, subject, refresh.TokenID, refresh.ExpiresAt); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh.Signed,
		TokenID:          refresh.TokenID,
		RefreshExpiresAt: refresh.ExpiresAt,
	}, nil
}

// VerifyAccess checks an access token and returns its claims. Refresh tokens
// presented here are invalid by definition.
func (e *Engine) VerifyAccess(ctx context.Context, accessToken string) (token.Claims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.Type() != token.TypeAccess {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Rotate exchanges a live refresh token for a fresh pair. The presented
// token is single-use: its record is deleted and its identifier blacklisted
// until natural expiry before the successor is issued, so a replay surfaces
// as [ErrRefreshReuse].
func (e *Engine) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	subject, tokenID, claims, err := e.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if _, err := e.revocations.VerifyRefreshToken(ctx, subject, tokenID); err != nil {
		if errors.Is(err, revoke.ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, err
	}

	// Retire the presented token before minting its successor. Blacklisting
	// first closes the replay window even if the record delete fails.
	if exp, ok := claims.ExpiresAt(); ok {
		if err := e.revocations.Blacklist(ctx, tokenID, exp); err != nil {
			return nil, err
		}
	}
	if err := e.revocations.RevokeRefreshToken(ctx, subject, tokenID); err != nil {
		return nil, err
	}

	return e.Issue(ctx, subject, carriedClaims(claims))
}

// Logout invalidates a refresh token: its identifier is blacklisted until the
// token's own expiry and its record removed. An unverifiable token is
// rejected; everything after verification is best-effort.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	subject, tokenID, claims, err := e.verifyRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	if exp, ok := claims.ExpiresAt(); ok {
		if err := e.revocations.Blacklist(ctx, tokenID, exp); err != nil {
			return err
		}
	}

	return e.revocations.RevokeRefreshToken(ctx, subject, tokenID)
}

// RevokeAllSessions deletes every refresh record under userID — password
// change, account compromise. Deletions are concurrent and not atomic;
// partial failures are logged by the revocation store and the count of
// removed records is returned.
func (e *Engine) RevokeAllSessions(ctx context.Context, userID string) (int, error) {
	if e == nil || e.revocations == nil {
		return 0, ErrEngineNotReady
	}
	return e.revocations.RevokeAllUserTokens(ctx, userID)
}

// RateLimiter exposes the engine's limiter for middleware wiring.
func (e *Engine) RateLimiter() *ratelimit.Limiter {
	return e.limiter
}

// TwoFactorRequired reports whether callers must gate logins on TOTP.
func (e *Engine) TwoFactorRequired() bool { return e.config.RequireTwoFactor }

// VerifiedEmailRequired reports whether callers must gate logins on a
// verified address.
func (e *Engine) VerifiedEmailRequired() bool { return e.config.RequireVerifiedEmail }

// verifyRefresh runs the shared preamble of Rotate and Logout: signature and
// expiry, type=refresh, identity claims present, identifier not blacklisted.
func (e *Engine) verifyRefresh(ctx context.Context, refreshToken string) (string, string, token.Claims, error) {
	claims, err := e.tokens.Verify(refreshToken)
	if err != nil {
		return "", "", nil, ErrInvalidToken
	}
	if claims.Type() != token.TypeRefresh {
		return "", "", nil, ErrInvalidToken
	}

	subject := claims.Subject()
	tokenID := claims.TokenID()
	if subject == "" || tokenID == "" {
		return "", "", nil, ErrInvalidToken
	}

	blocked, err := e.revocations.IsBlacklisted(ctx, tokenID)
	if err != nil {
		return "", "", nil, err
	}
	if blocked {
		return "", "", nil, ErrRefreshReuse
	}

	return subject, tokenID, claims, nil
}

// carriedClaims extracts the caller's custom claims from a verified claim
// set, dropping everything the next mint injects itself.
func carriedClaims(claims token.Claims) map[string]any {
	carried := map[string]any{}
	for k, v := range claims {
		switch k {
		case "sub", "jti", "type", "exp", "iat", "iss":
			continue
		}
		carried[k] = v
	}
	return carried
}
