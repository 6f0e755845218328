// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection. filippo.io/csrf
// checks Fetch metadata headers, so no token cookie is involved.
type CSRFConfig struct {
	// AuthKey is the 32-byte key the gorilla-compatible API requires.
	AuthKey []byte

	ErrorHandler http.Handler

	// TrustedOrigins are host[:port] values allowed to make cross-origin
	// requests.
	TrustedOrigins []string
}

// DefaultCSRFConfig returns a CSRFConfig with sensible defaults.
func DefaultCSRFConfig(authKey []byte, isDev bool) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	if isDev {
		cfg.TrustedOrigins = []string{"localhost:8080", "127.0.0.1:8080"}
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-origin state-changing
// requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	errHandler := cfg.ErrorHandler
	if errHandler == nil {
		errHandler = http.HandlerFunc(csrfErrorHandler)
	}
	opts := []csrf.Option{csrf.ErrorHandler(errHandler)}
	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}
	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.WarnContext(r.Context(), "CSRF validation failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	const msg = "Solicitud rechazada: origen no permitido."
	if WantsJSON(r) || SentJSON(r) {
		WriteAPIError(w, http.StatusForbidden, "csrf_failed", msg, nil)
		return
	}
	http.Error(w, msg, http.StatusForbidden)
}
