package veil

import (
	"errors"
	"time"

	"github.com/veilauth/veil/token"
	"github.com/veilauth/veil/totp"
)

// Config is assembled once, validated at [Builder.Build], and treated as
// immutable afterwards.
type Config struct {
	Token TokenConfig
	TOTP  TOTPConfig

	// KeyPrefix namespaces every store key this engine writes.
	KeyPrefix string

	// Feature flags consumed by callers gating their login flows.
	RequireTwoFactor     bool
	RequireVerifiedEmail bool
}

// TokenConfig holds signing parameters. Secret is required and must be at
// least 32 characters — a shorter secret fails Build, never a request.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// TOTPConfig tunes the second factor. Zero values take RFC defaults
// (6 digits, 30-second period, ±1 step skew).
type TOTPConfig struct {
	Issuer string
	Digits int
	Period int
	Skew   int
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  token.DefaultAccessTTL,
			RefreshTTL: token.DefaultRefreshTTL,
		},
		TOTP: TOTPConfig{
			Digits: totp.DefaultDigits,
			Period: totp.DefaultPeriod,
			Skew:   totp.DefaultSkew,
		},
		KeyPrefix: "veil",
	}
}

// Validate rejects configurations that must never reach request handling.
func (c Config) Validate() error {
	if len(c.Token.Secret) < 32 {
		return errors.New("Token.Secret must be at least 32 characters")
	}
	if c.Token.AccessTTL < 0 || c.Token.RefreshTTL < 0 {
		return errors.New("token TTLs must not be negative")
	}
	if c.TOTP.Digits < 0 || c.TOTP.Digits > 10 {
		return errors.New("TOTP.Digits out of range")
	}
	if c.TOTP.Period < 0 {
		return errors.New("TOTP.Period must not be negative")
	}
	if c.TOTP.Skew < 0 || c.TOTP.Skew > 10 {
		return errors.New("TOTP.Skew out of range")
	}
	if c.KeyPrefix == "" {
		return errors.New("KeyPrefix must not be empty")
	}
	return nil
}
