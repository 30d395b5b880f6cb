package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ayush/personal-library/internal/httpx"
)

const msgTooManyRequests = "Too many requests, please try again later"

// Counter increments a fixed-window counter and returns the new value.
// The window starts with the first increment of a key.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows at most limit requests per client address and route
// within window. Counter failures let the request through.
func RateLimit(counter Counter, limit int, window time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Path + ":" + clientIP(r)

			n, err := counter.Incr(r.Context(), key, window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit counter unavailable",
					slog.String("path", r.URL.Path), slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			if n > int64(limit) {
				logger.WarnContext(r.Context(), "rate limit exceeded",
					slog.String("path", r.URL.Path), slog.String("ip", clientIP(r)))
				w.Header().Set("Retry-After", retryAfter(window))
				httpx.WriteMessage(w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr. RealIP runs earlier in the
// chain, so forwarded addresses are already applied.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(window time.Duration) string {
	secs := int64(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}
