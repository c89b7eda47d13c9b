package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/veilauth/veil/ratelimit"
)

// CodeRateLimited is the machine-readable failure code carried in 429 bodies.
const CodeRateLimited = "RATE_LIMIT_EXCEEDED"

// RateLimit enforces policy per client on the wrapped routes. Every limited
// response carries the X-RateLimit-* headers; rejections additionally carry
// Retry-After in whole seconds.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision, err := limiter.Allow(r.Context(), policy, ClientIdentifier(r))
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", decision.ResetAt.UTC().Format(time.RFC3339))

			if !decision.Allowed {
				h.Set("Retry-After", strconv.Itoa(int(decision.RetryAfter/time.Second)))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIdentifier resolves the counter key for a request: the first
// X-Forwarded-For value, else X-Real-IP, else the literal "unknown".
// The headers are trusted as-is — deployments behind an untrusted edge MUST
// strip or override them upstream.
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return "unknown"
}
