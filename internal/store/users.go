// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

const userColumns = `id, nombre, password, rol, estado, COALESCE(avatar, '') AS avatar,
	creado_en, actualizado_en, is_deleted`

const duplicateUserMsg = "Ya existe un usuario con ese nombre."

// UserStore persists panel accounts. Password hashing happens in the
// service layer; the store only sees hashes.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a UserStore.
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts a user whose Password field already holds a hash.
func (s *UserStore) Create(ctx context.Context, in model.UserInput) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO usuarios (nombre, password, rol, estado, avatar) VALUES (?, ?, ?, ?, ?)`,
		in.Nombre, in.Password, in.Rol, in.Estado, nullIfEmpty(in.Avatar))
	if err != nil {
		return 0, translate("create user", err, duplicateUserMsg)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Persistence("create user", err)
	}
	return id, nil
}

// Get returns a live user by id.
func (s *UserStore) Get(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM usuarios WHERE id = ? AND is_deleted = 0`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Usuario no encontrado.")
	}
	if err != nil {
		return nil, apperr.Persistence("get user", err)
	}
	return &u, nil
}

// GetByName returns a live user by login name.
func (s *UserStore) GetByName(ctx context.Context, nombre string) (*model.User, error) {
	var u model.User
	err := s.db.GetContext(ctx, &u,
		`SELECT `+userColumns+` FROM usuarios WHERE nombre = ? AND is_deleted = 0`, nombre)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Usuario no encontrado.")
	}
	if err != nil {
		return nil, apperr.Persistence("get user by name", err)
	}
	return &u, nil
}

// List returns all live users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := s.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+` FROM usuarios WHERE is_deleted = 0 ORDER BY id`); err != nil {
		return nil, apperr.Persistence("list users", err)
	}
	return users, nil
}

// Update changes a live user's name, role and state. A non-empty Password
// (already hashed) replaces the stored hash and a non-empty Avatar replaces
// the stored avatar.
func (s *UserStore) Update(ctx context.Context, id int64, in model.UserInput) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE usuarios
		    SET nombre = ?, rol = ?, estado = ?,
		        password = COALESCE(?, password),
		        avatar = COALESCE(?, avatar),
		        actualizado_en = CURRENT_TIMESTAMP
		  WHERE id = ? AND is_deleted = 0`,
		in.Nombre, in.Rol, in.Estado, nullIfEmpty(in.Password), nullIfEmpty(in.Avatar), id)
	if err != nil {
		return translate("update user", err, duplicateUserMsg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Persistence("update user", err)
	}
	if n == 0 {
		return apperr.NotFound("Usuario no encontrado.")
	}
	return nil
}

// UpdatePasswordHash replaces a user's password hash, used when a login
// upgrades a legacy hash.
func (s *UserStore) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE usuarios SET password = ?, actualizado_en = CURRENT_TIMESTAMP WHERE id = ?`,
		hash, id); err != nil {
		return apperr.Persistence("update password hash", err)
	}
	return nil
}

// Delete soft-deletes a user. It returns false when the user is missing or
// already deleted.
func (s *UserStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE usuarios SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return false, apperr.Persistence("delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("delete user", err)
	}
	return n > 0, nil
}

// Count returns the number of live users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM usuarios WHERE is_deleted = 0`); err != nil {
		return 0, apperr.Persistence("count users", err)
	}
	return n, nil
}

// CountAll returns the number of user rows, deleted ones included.
func (s *UserStore) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM usuarios`); err != nil {
		return 0, apperr.Persistence("count all users", err)
	}
	return n, nil
}
