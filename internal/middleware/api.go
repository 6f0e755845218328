// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// APIError is the JSON error body shared by every endpoint.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIError{Code: code, Message: message, Details: details})
}

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()
	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds drops every entry once the cache holds more than maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

// maxTrackedIPs bounds the number of per-IP limiters kept between cleanups.
const maxTrackedIPs = 10000

// GlobalRateLimiter limits requests per client IP.
type GlobalRateLimiter struct {
	cache    *limiterCache[string]
	maxIPs   int
	stop     chan struct{}
	stopOnce sync.Once
}

// NewGlobalRateLimiter creates a per-IP limiter allowing rps requests per
// second with the given burst, and starts its cleanup loop. Call Close to
// stop it.
func NewGlobalRateLimiter(rps float64, burst int) *GlobalRateLimiter {
	rl := &GlobalRateLimiter{
		cache:  newLimiterCache[string](rps, burst),
		maxIPs: maxTrackedIPs,
		stop:   make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Close stops the cleanup loop.
func (rl *GlobalRateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *GlobalRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stop:
			return
		}
	}
}

func (rl *GlobalRateLimiter) cleanup() {
	if rl.cache.clearIfExceeds(rl.maxIPs) {
		slog.Info("cleared API rate limiters due to size")
	}
}

// Middleware answers 429 once a client exceeds its budget, as JSON or plain
// text depending on what the client accepts.
func (rl *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getClientIP(r)
			if !rl.cache.get(ip).Allow() {
				slog.WarnContext(r.Context(), "rate limit exceeded", "ip", ip)
				if WantsJSON(r) {
					WriteAPIError(w, http.StatusTooManyRequests, "rate_limited",
						"Demasiadas solicitudes. Espera un momento e inténtalo de nuevo.", nil)
					return
				}
				http.Error(w, "Demasiadas solicitudes. Espera un momento e inténtalo de nuevo.",
					http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
