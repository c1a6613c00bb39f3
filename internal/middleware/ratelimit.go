// Copyright (c) 2025-2026 Acme Inc.
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
)

// IPRateLimiter applies a per-IP token bucket to a route group. Used for
// public write endpoints such as the contact form.
type IPRateLimiter struct {
	limiters *limiterCache[string]
}

// NewIPRateLimiter creates a rate limiter allowing rps requests per second
// with the given burst per client IP.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: newLimiterCache[string](rps, burst),
	}
}

// Middleware returns the rate limiting middleware. Requests over the limit
// receive 429.
func (rl *IPRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if !rl.limiters.get(ip).Allow() {
				http.Error(w, "Too many requests. Please try again later.", http.StatusTooManyRequests)
				return
			}
			// Unbounded IP churn would grow the cache forever.
			rl.limiters.clearIfExceeds(10000)
			next.ServeHTTP(w, r)
		})
	}
}
