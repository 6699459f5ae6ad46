package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Purav2003/epimech-admin/internal/apperr"
	"github.com/Purav2003/epimech-admin/internal/respond"
)

// fixedWindow counts hits per key in a window that starts at the first hit.
// Returns {count, remaining}.
var fixedWindow = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
local limit = tonumber(ARGV[2])
if current == false then
	redis.call('SET', KEYS[1], 1, 'EX', ARGV[1])
	return {1, limit - 1}
end
local count = tonumber(current)
if count >= limit then
	return {count + 1, 0}
end
local n = redis.call('INCR', KEYS[1])
return {n, limit - n}
`)

// RateLimiter enforces fixed-window limits backed by Redis. A nil limiter
// lets everything through.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Allow records one hit for key and reports whether it is within limit.
func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	res, err := fixedWindow.Run(ctx, l.rdb, []string{"rate:fw:" + key}, secs, limit).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	return res[0] <= int64(limit), int(max(res[1], 0)), nil
}

// Limit rejects requests from a client IP beyond limit per window under
// the given rule name. Redis failures let the request through.
func (l *RateLimiter) Limit(name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil || l.rdb == nil || limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, remaining, err := l.Allow(r.Context(), name+":"+ip, limit, window)
			if err != nil {
				log.Warn().Err(err).Str("rule", name).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				log.Warn().Str("rule", name).Str("ip", ip).Msg("rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(int(window/time.Second)))
				respond.Error(w, r, apperr.RateLimited(fmt.Sprintf("too many requests, try again in %s", window)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have normalized RemoteAddr already.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
