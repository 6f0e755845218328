// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/model"
)

// Default admin credentials, used only when the usuarios table is empty.
const (
	DefaultAdminName     = "admin"
	DefaultAdminPassword = "admin123"
)

// PasswordHasher hashes a plaintext password for storage.
type PasswordHasher func(password string) (string, error)

// Seed creates the default admin account when no user row exists at all.
// password overrides DefaultAdminPassword when non-empty.
func Seed(ctx context.Context, db *sqlx.DB, hash PasswordHasher, password string) error {
	users := NewUserStore(db)

	n, err := users.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("checking for users: %w", err)
	}
	if n > 0 {
		slog.Info("users already exist, skipping seed")
		return nil
	}

	if password == "" {
		password = DefaultAdminPassword
	}
	passwordHash, err := hash(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	id, err := users.Create(ctx, model.UserInput{
		Nombre:   DefaultAdminName,
		Password: passwordHash,
		Rol:      model.RoleAdmin,
		Estado:   model.UserActive,
		Avatar:   model.DefaultAvatar,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user", "id", id, "nombre", DefaultAdminName)
	return nil
}
