package middlewares

import (
	"net"
	"net/http"
	"strconv"

	"github.com/dropDatabas3/gatekeeper/internal/rate"
)

// WithRateLimit guards an endpoint with the fixed-window limiter, keyed by
// client IP. A nil limiter disables the guard.
func WithRateLimit(limiter rate.Limiter, name string) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := name + ":" + clientIP(r)
			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				// The limiter being down must not take the endpoint down.
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
