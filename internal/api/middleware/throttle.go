package middleware

import (
	"log"
	"net"
	"net/http"

	"rsih_portal/internal/common"
	"rsih_portal/internal/platform/cache"
)

// Throttle limits requests per client IP. Limiter errors let the request through.
func Throttle(limiter cache.AttemptLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Printf("WARN: attempt limiter unavailable: %v", err)
				allowed = true
			}
			if !allowed {
				common.RespondWithError(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP middleware to have normalised RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
