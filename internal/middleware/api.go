// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/httprate"
	"golang.org/x/time/rate"

	"github.com/olegiv/exhibit-cms/internal/tracking"
)

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

func writeRateLimited(w http.ResponseWriter) {
	WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Rate limit exceeded. Please slow down.", nil)
}

// limiterIdle is how long a key may go unused before prune drops it.
const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterCache holds one token bucket per key.
type limiterCache[K comparable] struct {
	mu      sync.Mutex
	entries map[K]*limiterEntry
	rate    rate.Limit
	burst   int
	now     func() time.Time
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		entries: make(map[K]*limiterEntry),
		rate:    rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// allow takes one token from key's bucket, creating the bucket on first use.
func (lc *limiterCache[K]) allow(key K) bool {
	lc.mu.Lock()
	e, ok := lc.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(lc.rate, lc.burst)}
		lc.entries[key] = e
	}
	e.lastSeen = lc.now()
	lc.mu.Unlock()
	return e.limiter.Allow()
}

// prune drops keys idle for longer than idle. If more than maxSize keys
// remain, the whole cache is reset. It returns the number of keys dropped.
func (lc *limiterCache[K]) prune(idle time.Duration, maxSize int) int {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	before := len(lc.entries)
	cutoff := lc.now().Add(-idle)
	for k, e := range lc.entries {
		if e.lastSeen.Before(cutoff) {
			delete(lc.entries, k)
		}
	}
	if len(lc.entries) > maxSize {
		lc.entries = make(map[K]*limiterEntry)
	}
	return before - len(lc.entries)
}

func (lc *limiterCache[K]) size() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return len(lc.entries)
}

// GlobalRateLimiter limits every API request per client IP.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
}

// NewGlobalRateLimiter creates a new global rate limiter.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		cache: newLimiterCache[string](rps, burst),
	}
}

// Middleware returns the rate limiting middleware.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := tracking.ClientIP(r)
			if !rl.cache.allow(ip) {
				w.Header().Set("Retry-After", "1")
				writeRateLimited(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Prune forgets IPs that have been idle for a while, and resets every
// limiter if more than maxSize are still tracked afterwards.
func (rl *GlobalRateLimiter) Prune(maxSize int) {
	if n := rl.cache.prune(limiterIdle, maxSize); n > 0 {
		slog.Info("pruned API rate limiters", "dropped", n, "remaining", rl.cache.size())
	}
}

// PublicRateLimit limits unauthenticated visitor endpoints such as QR scans
// and visitor registration to requests per window for each client IP.
func PublicRateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return tracking.ClientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			slog.Warn("public rate limit exceeded", "ip", tracking.ClientIP(r), "path", r.URL.Path)
			writeRateLimited(w)
		}),
	)
}
