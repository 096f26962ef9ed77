package middleware

import (
	"crypto/subtle"
	"net/http"
)

// TokenHeader is the header clients present their shared secret in.
const TokenHeader = "X-Token"

// TokenAuth guards a route group with a shared secret. While the server
// token is unconfigured every request fails with a 500 envelope rather
// than silently serving unauthenticated; a missing or wrong client token
// gets a 401.
func TokenAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				WriteError(w, http.StatusInternalServerError, CodeTokenUnset,
					"server token is not configured")
				return
			}
			presented := r.Header.Get(TokenHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				WriteError(w, http.StatusUnauthorized, CodeUnauthorized,
					"invalid or missing token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
