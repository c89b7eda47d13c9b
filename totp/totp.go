package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// 160-bit secrets per RFC 4226 §4 recommendation for HMAC-SHA1.
const secretBytes = 20

// Defaults applied when Config fields are zero.
const (
	DefaultDigits = 6
	DefaultPeriod = 30
	DefaultSkew   = 1
)

// ErrInvalidSecret is returned when a provided secret is empty or not valid
// base32.
var ErrInvalidSecret = errors.New("totp: invalid secret")

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Config tunes code shape and verification tolerance. The hash algorithm is
// fixed at SHA1; enrollment URIs advertise it explicitly so authenticator
// apps agree.
type Config struct {
	Issuer string
	Digits int
	Period int
	Skew   int
}

// Manager generates and verifies one-time codes. It holds no mutable state
// and is safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager fills in RFC-standard defaults: 6 digits, 30-second steps,
// ±1 step of verification skew. Verification always tolerates at least one
// step of clock drift; exact-step-only matching is not expressible.
func NewManager(cfg Config) *Manager {
	if cfg.Digits <= 0 {
		cfg.Digits = DefaultDigits
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Skew <= 0 {
		cfg.Skew = DefaultSkew
	}
	return &Manager{config: cfg}
}

// GenerateSecret returns a fresh 160-bit secret, base32-encoded without
// padding.
func (m *Manager) GenerateSecret() (string, error) {
	raw := make([]byte, secretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return secretEncoding.EncodeToString(raw), nil
}

// GenerateAt returns the code for the time step containing at.
func (m *Manager) GenerateAt(secretBase32 string, at time.Time) (string, error) {
	counter := at.Unix() / int64(m.config.Period)
	if counter < 0 {
		return "", errors.New("totp: timestamp before epoch")
	}
	return m.Generate(secretBase32, uint64(counter))
}

// Generate computes the HOTP code for an explicit counter value. It is a
// pure function of (secret, counter): two calls within the same time step
// always agree.
func (m *Manager) Generate(secretBase32 string, counter uint64) (string, error) {
	secret, err := decodeSecret(secretBase32)
	if err != nil {
		return "", err
	}
	return hotpCode(secret, counter, m.config.Digits), nil
}

// Verify reports whether code matches the counter at `at` or any counter
// within ±skew steps. Comparison is constant-time per candidate. A malformed
// code (wrong length, non-digits) is simply a mismatch, not an error.
func (m *Manager) Verify(code, secretBase32 string, at time.Time) (bool, error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != m.config.Digits || !isNumeric(trimmed) {
		return false, nil
	}

	secret, err := decodeSecret(secretBase32)
	if err != nil {
		return false, err
	}

	base := at.Unix() / int64(m.config.Period)
	for step := -m.config.Skew; step <= m.config.Skew; step++ {
		counter := base + int64(step)
		if counter < 0 {
			continue
		}
		candidate := hotpCode(secret, uint64(counter), m.config.Digits)
		if subtle.ConstantTimeCompare([]byte(candidate), []byte(trimmed)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

// ProvisionURI formats the otpauth:// enrollment URI for authenticator apps.
// Algorithm, digits, and period are advertised explicitly.
func (m *Manager) ProvisionURI(secretBase32, account string) string {
	issuer := m.config.Issuer
	label := url.PathEscape(issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secretBase32)
	v.Set("issuer", issuer)
	v.Set("algorithm", "SHA1")
	v.Set("digits", strconv.Itoa(m.config.Digits))
	v.Set("period", strconv.Itoa(m.config.Period))

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// hotpCode is RFC 4226 §5.3: 8-byte big-endian counter, HMAC-SHA1, dynamic
// truncation with the high bit masked, mod 10^digits, left-padded.
func hotpCode(secret []byte, counter uint64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func decodeSecret(secretBase32 string) ([]byte, error) {
	normalized := strings.ToUpper(strings.TrimRight(strings.TrimSpace(secretBase32), "="))
	if normalized == "" {
		return nil, ErrInvalidSecret
	}

	secret, err := secretEncoding.DecodeString(normalized)
	if err != nil {
		return nil, ErrInvalidSecret
	}
	return secret, nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
