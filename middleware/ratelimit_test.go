package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/veilauth/veil/kv"
	"github.com/veilauth/veil/ratelimit"
)

func newTestLimiter(t *testing.T) (*ratelimit.Limiter, *miniredis.Miniredis) {
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

	return ratelimit.NewLimiter(kv.NewRedisStore(rdb), "rl"), mr
}

func TestRateLimitBudgetAndHeaders(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	policy := ratelimit.Policy{Scope: "auth-login", MaxRequests: 2, Window: time.Minute}
	handler := RateLimit(limiter, policy)(okHandler())

	for i := 1; i <= policy.MaxRequests; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set("X-Real-IP", "192.0.2.7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, rec.Code)
		}
		if got := rec.Header().Get("X-RateLimit-Limit"); got != "2" {
			t.Fatalf("X-RateLimit-Limit = %q, want 2", got)
		}
		if got := rec.Header().Get("X-RateLimit-Remaining"); got != strconv.Itoa(policy.MaxRequests-i) {
			t.Fatalf("request %d: X-RateLimit-Remaining = %q", i, got)
		}
		if reset := rec.Header().Get("X-RateLimit-Reset"); reset == "" {
			t.Fatal("X-RateLimit-Reset missing")
		} else if _, err := time.Parse(time.RFC3339, reset); err != nil {
			t.Fatalf("X-RateLimit-Reset not RFC 3339: %q", reset)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("X-Real-IP", "192.0.2.7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-budget request: status %d, want 429", rec.Code)
	}
	if code := errorCode(t, rec); code != CodeRateLimited {
		t.Fatalf("code %s, want %s", code, CodeRateLimited)
	}
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || retryAfter <= 0 {
		t.Fatalf("Retry-After = %q, want positive integer seconds", rec.Header().Get("Retry-After"))
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("rejected request remaining = %q, want 0", got)
	}
}

func TestRateLimitWindowLapse(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	policy := ratelimit.Policy{Scope: "signup", MaxRequests: 1, Window: 10 * time.Second}
	handler := RateLimit(limiter, policy)(okHandler())

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/signup", nil)
		req.Header.Set("X-Real-IP", "192.0.2.8")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("first request: %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", code)
	}

	mr.FastForward(11 * time.Second)

	if code := send(); code != http.StatusOK {
		t.Fatalf("post-window request: %d, want 200", code)
	}
}

func TestClientIdentifierResolution(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded-for wins", map[string]string{
			"X-Forwarded-For": "203.0.113.9, 198.51.100.1",
			"X-Real-IP":       "198.51.100.2",
		}, "203.0.113.9"},
		{"real-ip fallback", map[string]string{
			"X-Real-IP": "198.51.100.2",
		}, "198.51.100.2"},
		{"no headers", nil, "unknown"},
		{"empty forwarded-for falls through", map[string]string{
			"X-Forwarded-For": "  ",
			"X-Real-IP":       "198.51.100.3",
		}, "198.51.100.3"},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range tc.headers {
			req.Header.Set(k, v)
		}
		if got := ClientIdentifier(req); got != tc.want {
			t.Fatalf("%s: ClientIdentifier = %q, want %q", tc.name, got, tc.want)
		}
	}
}
