package veil

import (
	"errors"

	"github.com/veilauth/veil/token"
)

var (
	// ErrInvalidToken covers bad signature, malformed structure, and expiry
	// alike. The collapse is deliberate: a caller that can tell which check
	// failed is an oracle for an attacker.
	ErrInvalidToken = token.ErrInvalidToken
	// ErrRefreshTokenNotFound is returned when a refresh token verifies
	// cryptographically but no live server-side record backs it.
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	// ErrRefreshReuse is returned when a blacklisted token identifier is
	// presented again after rotation or logout.
	ErrRefreshReuse = errors.New("refresh token reuse detected")
	// ErrTOTPInvalid is returned when a one-time code matches no counter
	// within the verification window.
	ErrTOTPInvalid = errors.New("invalid totp code")
	// ErrEngineNotReady is returned by methods on a zero-value Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
