// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the business rules that sit between the HTTP
// handlers and the store: credential checks, input sanitizing and the
// cleanup of upload files a mutation leaves behind.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

// Authentication failures. Unknown names and wrong passwords share one
// error so a caller cannot probe which accounts exist.
var (
	ErrInvalidCredentials = apperr.Unauthorized("Usuario o contraseña incorrectos.")
	ErrAccountInactive    = apperr.Unauthorized("La cuenta está desactivada.")
)

// CredentialStore is the subset of the user store the Authenticator needs.
type CredentialStore interface {
	GetByName(ctx context.Context, nombre string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
}

// Authenticator verifies login credentials.
type Authenticator struct {
	users  CredentialStore
	logger *slog.Logger
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(users CredentialStore, logger *slog.Logger) *Authenticator {
	return &Authenticator{users: users, logger: logger}
}

// Authenticate checks nombre and password against the live account of that
// name and returns its session projection. Hashes in an outdated format are
// replaced after a successful check.
func (a *Authenticator) Authenticate(ctx context.Context, nombre, password string) (model.SessionUser, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" || password == "" {
		return model.SessionUser{}, apperr.Validation("Usuario y contraseña son obligatorios.", nil)
	}

	user, err := a.users.GetByName(ctx, nombre)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			auth.Equalize(password)
			return model.SessionUser{}, ErrInvalidCredentials
		}
		return model.SessionUser{}, err
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		a.logger.Error("stored password hash unreadable", "user_id", user.ID, "error", err)
		return model.SessionUser{}, ErrInvalidCredentials
	}
	if !ok {
		return model.SessionUser{}, ErrInvalidCredentials
	}
	if !user.CanLogin() {
		return model.SessionUser{}, ErrAccountInactive
	}

	if auth.NeedsRehash(user.PasswordHash) {
		a.rehash(ctx, user.ID, password)
	}
	return user.SessionUser(), nil
}

func (a *Authenticator) rehash(ctx context.Context, id int64, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		a.logger.Warn("password rehash failed", "user_id", id, "error", err)
		return
	}
	if err := a.users.UpdatePasswordHash(ctx, id, hash); err != nil {
		a.logger.Warn("storing rehashed password failed", "user_id", id, "error", err)
		return
	}
	a.logger.Info("password hash upgraded", "user_id", id)
}
