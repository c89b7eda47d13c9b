// Package middleware provides net/http wrappers over the veil engine: a
// bearer-token guard, the CSRF double-submit defense, and per-route rate
// limiting.
//
// # Response contract
//
// Failures are machine-readable JSON: 401 for invalid or expired tokens,
// 403 with CSRF_TOKEN_MISSING or CSRF_TOKEN_INVALID for CSRF failures,
// 429 with Retry-After for rate limiting, and a generic 500 only for true
// infrastructure faults. Rate-limited routes always expose
// X-RateLimit-Limit, X-RateLimit-Remaining, and X-RateLimit-Reset.
package middleware
