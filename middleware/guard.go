package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	veil "github.com/veilauth/veil"
	"github.com/veilauth/veil/token"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified access-token claims stashed by
// [Guard].
func ClaimsFromContext(ctx context.Context) (token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(token.Claims)
	return claims, ok
}

// Guard rejects requests without a valid bearer access token. The 401 body
// never explains which verification check failed.
func Guard(engine *veil.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
				return
			}

			bearer, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
				return
			}

			claims, err := engine.VerifyAccess(r.Context(), bearer)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tokenStr := value[len(bearer):]
	if tokenStr == "" {
		return "", false
	}

	return tokenStr, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":  code,
		"error": message,
	})
}
