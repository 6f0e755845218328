// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/render"
	"github.com/galeria-cuadros/cuadros/internal/session"
	"github.com/galeria-cuadros/cuadros/internal/testutil"
	"github.com/galeria-cuadros/cuadros/web"
)

func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

func newTestSessionManager() *scs.SessionManager {
	return session.New(memstore.New(), session.Options{Lifetime: time.Hour, IsDev: true})
}

func newTestRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("templates fs: %v", err)
	}
	r, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return r
}

// createLoginUser stores an account whose password is password.
func createLoginUser(t *testing.T, db *sqlx.DB, nombre, password string, rol model.Role) int64 {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return testutil.CreateUser(t, db, nombre, hash, rol)
}

// sessionCookie returns the session cookie set by a response, or nil.
func sessionCookie(sm *scs.SessionManager, res *http.Response) *http.Cookie {
	for _, c := range res.Cookies() {
		if c.Name == sm.Cookie.Name {
			return c
		}
	}
	return nil
}
