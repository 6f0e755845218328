// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, content negotiation and request hardening.
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/logging"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys.
const (
	ContextKeyUser ContextKey = "user"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login"

// UserLoader fetches the current state of an account.
type UserLoader interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

// LoadUser places the session user in the request context. The projection
// is refreshed from the database on every request: a deleted or inactive
// account loses its session, and role changes apply immediately.
func LoadUser(sm *scs.SessionManager, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			su, ok := session.User(r.Context(), sm)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			u, err := users.Get(r.Context(), su.ID)
			switch {
			case errors.Is(err, apperr.ErrNotFound) || (err == nil && !u.CanLogin()):
				slog.InfoContext(r.Context(), "session user no longer allowed, ending session", "user_id", su.ID)
				_ = session.Destroy(r.Context(), sm)
				next.ServeHTTP(w, r)
				return
			case err != nil:
				slog.ErrorContext(r.Context(), "failed to refresh session user", "error", err, "user_id", su.ID)
			default:
				if fresh := u.SessionUser(); fresh != su {
					session.RefreshUser(r.Context(), sm, fresh)
					su = fresh
				}
			}

			ctx := logging.WithUserID(WithUser(r.Context(), su), su.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u model.SessionUser) context.Context {
	return context.WithValue(ctx, ContextKeyUser, u)
}

// GetUser returns the authenticated user of the request.
func GetUser(r *http.Request) (model.SessionUser, bool) {
	return UserFromContext(r.Context())
}

// UserFromContext returns the user stored by LoadUser.
func UserFromContext(ctx context.Context) (model.SessionUser, bool) {
	u, ok := ctx.Value(ContextKeyUser).(model.SessionUser)
	return u, ok
}

// GetUserID returns the current user's ID from context, or 0.
// Safe to use in logging where a zero-value is acceptable.
func GetUserID(ctx context.Context) int64 {
	if u, ok := UserFromContext(ctx); ok {
		return u.ID
	}
	return 0
}

// RequireAuthenticated lets the request through only when a session user is
// present. JSON clients get 401; browsers are redirected to the login page.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r); !ok {
			denyUnauthenticated(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		WriteAPIError(w, http.StatusUnauthorized, apperr.KindAuth.String(), "No autenticado.", nil)
		return
	}
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

// RequireRole creates middleware that admits only users holding one of
// roles. It also rejects unauthenticated requests, so it is safe on its own.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := GetUser(r)
			if !ok {
				denyUnauthenticated(w, r)
				return
			}
			if !u.Rol.In(roles...) {
				slog.WarnContext(r.Context(), "access denied",
					"status", http.StatusForbidden,
					"user_role", u.Rol,
					"allowed_roles", roles,
					"remote_addr", r.RemoteAddr,
				)
				const msg = "No tienes permisos para realizar esta acción."
				if WantsJSON(r) || r.Method != http.MethodGet {
					WriteAPIError(w, http.StatusForbidden, apperr.KindForbidden.String(), msg, nil)
					return
				}
				http.Error(w, msg, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly admits administrators.
func AdminOnly() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}

// AdminOrEditor admits administrators and editors.
func AdminOrEditor() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin, model.RoleEditor)
}
