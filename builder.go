package veil

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/veilauth/veil/kv"
	"github.com/veilauth/veil/ratelimit"
	"github.com/veilauth/veil/revoke"
	"github.com/veilauth/veil/token"
	"github.com/veilauth/veil/totp"
)

// Builder assembles an [Engine]. Construction is allocation-only; no store
// I/O happens until the engine's methods are called.
type Builder struct {
	config Config
	store  kv.Store
	logger *slog.Logger
	built  bool
}

// New returns a Builder pre-loaded with default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithStore injects the key-value store handle every component persists
// through. Passing it explicitly (rather than a package-level client) keeps
// tests isolated: one store per test.
func (b *Builder) WithStore(store kv.Store) *Builder {
	b.store = store
	return b
}

// WithRedis is a convenience for WithStore(kv.NewRedisStore(client)).
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.store = kv.NewRedisStore(client)
	return b
}

// WithLogger sets the logger used for best-effort failure reporting during
// bulk revocation. Nil keeps logging disabled.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration and wires the engine. A missing store or
// an undersized signing secret is a fatal startup condition surfaced here,
// never downgraded to a per-request error.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("store handle required")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		Secret:     b.config.Token.Secret,
		AccessTTL:  b.config.Token.AccessTTL,
		RefreshTTL: b.config.Token.RefreshTTL,
		Issuer:     b.config.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	totpIssuer := b.config.TOTP.Issuer
	if totpIssuer == "" {
		totpIssuer = b.config.Token.Issuer
	}

	engine := &Engine{
		config: b.config,
		tokens: tokens,
		revocations: revoke.NewStore(
			b.store,
			b.config.KeyPrefix+":rv",
			b.logger,
		),
		totp: totp.NewManager(totp.Config{
			Issuer: totpIssuer,
			Digits: b.config.TOTP.Digits,
			Period: b.config.TOTP.Period,
			Skew:   b.config.TOTP.Skew,
		}),
		limiter: ratelimit.NewLimiter(b.store, b.config.KeyPrefix+":rl"),
	}

	b.built = true
	return engine, nil
}
