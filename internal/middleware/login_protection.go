// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// maxLockout caps the exponential lockout backoff.
const maxLockout = 24 * time.Hour

// LoginProtection combines per-IP rate limiting of login posts with a
// per-account lockout after repeated failures.
type LoginProtection struct {
	ipLimiters *limiterCache[string]

	mu       sync.Mutex
	accounts map[string]*loginAttempt

	maxFailedAttempts int
	lockoutDuration   time.Duration
	attemptWindow     time.Duration
	now               func() time.Time
	stop              chan struct{}
	stopOnce          sync.Once
}

type loginAttempt struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
	lockouts    int
}

// LoginProtectionConfig holds configuration for login protection.
type LoginProtectionConfig struct {
	// IPRateLimit is login posts per second per IP.
	IPRateLimit float64
	IPBurst     int
	// MaxFailedAttempts within AttemptWindow lock the account.
	MaxFailedAttempts int
	// LockoutDuration doubles with each consecutive lockout.
	LockoutDuration time.Duration
	AttemptWindow   time.Duration
}

// DefaultLoginProtectionConfig returns sensible defaults.
func DefaultLoginProtectionConfig() LoginProtectionConfig {
	return LoginProtectionConfig{
		IPRateLimit:       0.5,
		IPBurst:           5,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		AttemptWindow:     15 * time.Minute,
	}
}

// NewLoginProtection creates a LoginProtection and starts its cleanup loop.
// Call Close to stop it.
func NewLoginProtection(cfg LoginProtectionConfig) *LoginProtection {
	def := DefaultLoginProtectionConfig()
	if cfg.IPRateLimit <= 0 {
		cfg.IPRateLimit = def.IPRateLimit
	}
	if cfg.IPBurst <= 0 {
		cfg.IPBurst = def.IPBurst
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = def.MaxFailedAttempts
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}

	lp := &LoginProtection{
		ipLimiters:        newLimiterCache[string](cfg.IPRateLimit, cfg.IPBurst),
		accounts:          make(map[string]*loginAttempt),
		maxFailedAttempts: cfg.MaxFailedAttempts,
		lockoutDuration:   cfg.LockoutDuration,
		attemptWindow:     cfg.AttemptWindow,
		now:               time.Now,
		stop:              make(chan struct{}),
	}
	go lp.cleanupLoop()
	return lp
}

// Close stops the cleanup loop.
func (lp *LoginProtection) Close() {
	lp.stopOnce.Do(func() { close(lp.stop) })
}

// accountKey normalises a login name so "Admin" and "admin " share a
// counter.
func accountKey(nombre string) string {
	return cases.Fold().String(strings.TrimSpace(nombre))
}

// IsAccountLocked reports whether the account is locked and for how long.
func (lp *LoginProtection) IsAccountLocked(nombre string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[accountKey(nombre)]
	if !ok {
		return false, 0
	}
	if remaining := a.lockedUntil.Sub(lp.now()); remaining > 0 {
		return true, remaining
	}
	return false, 0
}

// RecordFailedAttempt counts a failed login. It returns true and the lock
// duration when this failure locks the account.
func (lp *LoginProtection) RecordFailedAttempt(nombre string) (bool, time.Duration) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	key := accountKey(nombre)
	now := lp.now()
	a, ok := lp.accounts[key]
	if !ok || now.Sub(a.firstFailed) > lp.attemptWindow {
		if !ok {
			a = &loginAttempt{}
			lp.accounts[key] = a
		}
		a.count = 1
		a.firstFailed = now
	} else {
		a.count++
	}

	if a.count < lp.maxFailedAttempts {
		return false, 0
	}

	d := time.Duration(float64(lp.lockoutDuration) * math.Pow(2, float64(a.lockouts)))
	if d > maxLockout || d <= 0 {
		d = maxLockout
	}
	a.lockedUntil = now.Add(d)
	a.lockouts++
	a.count = 0

	slog.Warn("account locked after failed logins", "nombre", key, "lockouts", a.lockouts, "duration", d)
	return true, d
}

// RecordSuccessfulLogin clears the failure history of an account.
func (lp *LoginProtection) RecordSuccessfulLogin(nombre string) {
	lp.mu.Lock()
	delete(lp.accounts, accountKey(nombre))
	lp.mu.Unlock()
}

// RemainingAttempts returns how many failures are left before a lockout.
func (lp *LoginProtection) RemainingAttempts(nombre string) int {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	a, ok := lp.accounts[accountKey(nombre)]
	if !ok || lp.now().Sub(a.firstFailed) > lp.attemptWindow {
		return lp.maxFailedAttempts
	}
	return max(lp.maxFailedAttempts-a.count, 0)
}

func (lp *LoginProtection) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			lp.cleanupStaleEntries()
		case <-lp.stop:
			return
		}
	}
}

func (lp *LoginProtection) cleanupStaleEntries() {
	if lp.ipLimiters.clearIfExceeds(10000) {
		slog.Info("cleared login IP rate limiters due to size")
	}

	now := lp.now()
	lp.mu.Lock()
	for key, a := range lp.accounts {
		if now.After(a.lockedUntil) && now.Sub(a.firstFailed) > lp.attemptWindow {
			delete(lp.accounts, key)
		}
	}
	lp.mu.Unlock()
}

// LockedMessage is the user-facing text for a locked account.
func LockedMessage(remaining time.Duration) string {
	minutes := max(int(math.Ceil(remaining.Minutes())), 1)
	unit := "minutos"
	if minutes == 1 {
		unit = "minuto"
	}
	return fmt.Sprintf("Cuenta bloqueada temporalmente por intentos fallidos. Inténtalo de nuevo en %d %s.", minutes, unit)
}

// Middleware rate limits POST requests per client IP with 429.
func (lp *LoginProtection) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)
			if !lp.ipLimiters.get(ip).Allow() {
				slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
				const msg = "Demasiados intentos de inicio de sesión. Espera un momento."
				if WantsJSON(r) || SentJSON(r) {
					WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", msg, nil)
					return
				}
				http.Error(w, msg, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the client address without port. chi's RealIP
// middleware has already rewritten RemoteAddr from proxy headers.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
