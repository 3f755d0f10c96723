// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client IP in fixed windows stored in
// Valkey, so every server instance shares the same budget.
type RateLimiter struct {
	client *redis.Client
	name   string        // key namespace, e.g. "login"
	limit  int           // max requests per window
	window time.Duration // window length
}

// NewRateLimiter creates a rate limiter that allows limit requests per
// window for each client IP. name separates the counters of different
// limiters.
func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, name: name, limit: limit, window: window}
}

func (rl *RateLimiter) key(ip string) string {
	return "ratelimit:" + rl.name + ":" + ip
}

// allow increments the client's counter and reports whether it is still
// within the limit, along with the time left in the window. Valkey errors
// fail open.
func (rl *RateLimiter) allow(ctx context.Context, ip string) (bool, time.Duration) {
	key := rl.key(ip)

	n, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("rate limiter unavailable", "limiter", rl.name, "error", err)
		return true, 0
	}
	if n == 1 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			slog.Warn("rate limiter expire failed", "limiter", rl.name, "error", err)
		}
	}
	if n <= int64(rl.limit) {
		return true, 0
	}

	ttl, err := rl.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = rl.window
	}
	return false, ttl
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
// Only POST requests are counted so form pages stay reachable.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		ok, retry := rl.allow(r.Context(), clientIP(r))
		if !ok {
			if retry > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(int(retry.Round(time.Second).Seconds())))
			}
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// Check X-Forwarded-For first (may contain multiple IPs).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take the first (leftmost) IP, the original client.
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fall back to RemoteAddr (strip port).
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
