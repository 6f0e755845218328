// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager and stores the
// authenticated user's projection in it.
package session

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/galeria-cuadros/cuadros/internal/model"
)

// DefaultLifetime is the absolute session lifetime.
const DefaultLifetime = 24 * time.Hour

const (
	userKey  = "usuario"
	flashKey = "flash"
)

func init() {
	gob.Register(model.SessionUser{})
}

// Options configure the session cookie.
type Options struct {
	Lifetime time.Duration
	IsDev    bool
}

// New creates a session manager backed by store.
func New(store scs.Store, opts Options) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = opts.Lifetime
	if sm.Lifetime <= 0 {
		sm.Lifetime = DefaultLifetime
	}
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !opts.IsDev
	if !opts.IsDev {
		// __Host- requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-session"
	}
	return sm
}

// NewSQLiteStore returns a store that keeps sessions in the sessions table.
func NewSQLiteStore(db *sql.DB) scs.Store {
	return sqlite3store.New(db)
}

// PutUser stores the user projection and renews the session token so a
// login never reuses a pre-authentication token.
func PutUser(ctx context.Context, sm *scs.SessionManager, u model.SessionUser) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, userKey, u)
	return nil
}

// RefreshUser replaces the stored projection without renewing the token.
func RefreshUser(ctx context.Context, sm *scs.SessionManager, u model.SessionUser) {
	sm.Put(ctx, userKey, u)
}

// User returns the user projection stored in the session, if any.
func User(ctx context.Context, sm *scs.SessionManager) (model.SessionUser, bool) {
	u, ok := sm.Get(ctx, userKey).(model.SessionUser)
	return u, ok && u.ID > 0
}

// Destroy ends the session and deletes its stored state.
func Destroy(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// SetFlash stores a one-shot message shown on the next rendered page.
func SetFlash(ctx context.Context, sm *scs.SessionManager, msg string) {
	sm.Put(ctx, flashKey, msg)
}

// PopFlash returns and clears the pending flash message.
func PopFlash(ctx context.Context, sm *scs.SessionManager) string {
	return sm.PopString(ctx, flashKey)
}
