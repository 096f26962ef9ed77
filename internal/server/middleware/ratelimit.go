package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit applies a process-wide token bucket to a route group. Zero or
// negative rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, CodeRateLimited,
					"request rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
