package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token type claim values. Every minted token carries exactly one of them.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Default lifetimes applied when Config leaves the TTLs zero.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

const minSecretLength = 32

// ErrInvalidToken is the single outward-facing verification failure. It
// deliberately does not distinguish bad signatures from malformed input or
// expiry.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded claim set of a verified token.
type Claims map[string]any

// Subject returns the "sub" claim, or "" when absent.
func (c Claims) Subject() string {
	s, _ := c["sub"].(string)
	return s
}

// Type returns the "type" claim, or "" when absent.
func (c Claims) Type() string {
	s, _ := c["type"].(string)
	return s
}

// TokenID returns the "jti" claim, or "" when absent.
func (c Claims) TokenID() string {
	s, _ := c["jti"].(string)
	return s
}

// ExpiresAt returns the "exp" claim as wall-clock time. ok is false when the
// claim is missing or not numeric.
func (c Claims) ExpiresAt() (time.Time, bool) {
	switch v := c["exp"].(type) {
	case float64:
		return time.Unix(int64(v), 0), true
	case int64:
		return time.Unix(v, 0), true
	default:
		return time.Time{}, false
	}
}

// Config holds the signing parameters. Secret must be at least 32 characters;
// a shorter secret is rejected at construction.
type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Manager mints and verifies HS256 tokens for one configured secret.
// It is safe for concurrent use.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates the signing configuration. A missing or short secret
// is a fatal startup condition, surfaced here and nowhere else.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, errors.New("token: signing secret must be at least 32 characters")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// Create signs a token carrying the given claims plus numeric "exp" and "iat"
// set from now and ttl. Caller claims win on every key except "exp" and "iat".
func (m *Manager) Create(claims Claims, ttl time.Duration) (string, error) {
	return m.createAt(m.now(), claims, ttl)
}

func (m *Manager) createAt(now time.Time, claims Claims, ttl time.Duration) (string, error) {
	payload := jwt.MapClaims{}
	for k, v := range claims {
		payload[k] = v
	}
	payload["iat"] = now.Unix()
	payload["exp"] = now.Add(ttl).Unix()
	if m.config.Issuer != "" {
		if _, ok := payload["iss"]; !ok {
			payload["iss"] = m.config.Issuer
		}
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString([]byte(m.config.Secret))
}

// CreateAccess mints a short-lived access token (type=access).
func (m *Manager) CreateAccess(claims Claims) (string, error) {
	withType := Claims{}
	for k, v := range claims {
		withType[k] = v
	}
	withType["type"] = TypeAccess

	return m.Create(withType, m.config.AccessTTL)
}

// RefreshToken carries a freshly minted refresh token alongside the
// identifier and expiry it was signed with.
type RefreshToken struct {
	Signed    string
	TokenID   string
	ExpiresAt time.Time
}

// CreateRefresh mints a refresh token (type=refresh) with a fresh random
// token identifier. The identifier is what revocation state is keyed on; the
// caller must persist a matching record for the token to be usable.
// ExpiresAt is the embedded "exp" instant itself, so a record derived from it
// cannot drift from the claim.
func (m *Manager) CreateRefresh(claims Claims) (*RefreshToken, error) {
	tokenID := uuid.NewString()
	now := m.now()

	withType := Claims{}
	for k, v := range claims {
		withType[k] = v
	}
	withType["type"] = TypeRefresh
	withType["jti"] = tokenID

	signed, err := m.createAt(now, withType, m.config.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &RefreshToken{
		Signed:  signed,
		TokenID: tokenID,
		// The claim carries whole seconds; mirror that exactly.
		ExpiresAt: time.Unix(now.Add(m.config.RefreshTTL).Unix(), 0),
	}, nil
}

// Verify checks signature, structure, and expiry and returns the decoded
// claims. Any failure yields the undifferentiated [ErrInvalidToken].
func (m *Manager) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	parsed, err := parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return []byte(m.config.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	payload, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return Claims(payload), nil
}

// AccessTTL reports the configured access-token lifetime.
func (m *Manager) AccessTTL() time.Duration { return m.config.AccessTTL }

// RefreshTTL reports the configured refresh-token lifetime.
func (m *Manager) RefreshTTL() time.Duration { return m.config.RefreshTTL }
