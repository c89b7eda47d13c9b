package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// Cookie and header names of the double-submit pair. Both values must match
// exactly for a state-changing request to pass.
const (
	CSRFCookieName = "csrf_token"
	CSRFHeaderName = "X-CSRF-Token"
)

// Machine-readable failure codes carried in 403 bodies.
const (
	CodeCSRFMissing = "CSRF_TOKEN_MISSING"
	CodeCSRFInvalid = "CSRF_TOKEN_INVALID"
)

const (
	csrfTokenBytes     = 32
	csrfCookieLifetime = 3600 // seconds
)

// CSRFCookie issues the double-submit cookie to clients that do not carry
// one yet. The cookie is deliberately NOT HttpOnly — the defense depends on
// page scripts reading it back into the request header, which a cross-origin
// attacker cannot do.
func CSRFCookie(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CSRFCookieName); err != nil || c.Value == "" {
			value, err := newCSRFToken()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    value,
				Path:     "/",
				MaxAge:   csrfCookieLifetime,
				SameSite: http.SameSiteStrictMode,
				HttpOnly: false,
			})
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFProtect enforces the double-submit check on state-changing methods.
// Safe methods pass untouched. Missing either half and mismatching values
// are distinct 403 codes so clients can tell "fetch a token" from "retry".
func CSRFProtect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(CSRFCookieName)
		header := r.Header.Get(CSRFHeaderName)
		if err != nil || cookie.Value == "" || header == "" {
			writeError(w, http.StatusForbidden, CodeCSRFMissing, "csrf token missing")
			return
		}

		if !constantTimeEqual(cookie.Value, header) {
			writeError(w, http.StatusForbidden, CodeCSRFInvalid, "csrf token invalid")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func newCSRFToken() (string, error) {
	raw := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// constantTimeEqual compares without data-dependent early exit. Lengths are
// not secret here; only the byte comparison needs to resist timing.
func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
