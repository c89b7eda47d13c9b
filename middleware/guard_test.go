package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	veil "github.com/veilauth/veil"
)

func newTestEngine(t *testing.T) *veil.Engine {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	cfg := veil.Config{}
	cfg.Token.Secret = strings.Repeat("s", 32)
	cfg.Token.Issuer = "veil-test"
	cfg.KeyPrefix = "veil"

	engine, err := veil.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return engine
}

func TestGuardAcceptsValidAccessToken(t *testing.T) {
	engine := newTestEngine(t)

	pair, err := engine.Issue(context.Background(), "u1", map[string]any{"role": "member"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotSubject string
	handler := Guard(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			t.Fatal("claims missing from request context")
		}
		gotSubject = claims.Subject()
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if gotSubject != "u1" {
		t.Fatalf("subject %q, want u1", gotSubject)
	}
}

func TestGuardRejects(t *testing.T) {
	engine := newTestEngine(t)

	pair, err := engine.Issue(context.Background(), "u1", nil)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	handler := Guard(engine)(okHandler())

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"not bearer", "Token abc"},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not.a.token"},
		// A refresh token is not an access credential.
		{"refresh as access", "Bearer " + pair.RefreshToken},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status %d, want 401", tc.name, rec.Code)
		}
	}
}
