// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/store"
	"github.com/galeria-cuadros/cuadros/internal/util"
)

// UserService manages panel accounts.
type UserService struct {
	users  *store.UserStore
	files  FileRemover
	logger *slog.Logger
}

// NewUserService creates a UserService. files may be nil, in which case
// replaced avatars stay on disk.
func NewUserService(users *store.UserStore, files FileRemover, logger *slog.Logger) *UserService {
	return &UserService{users: users, files: files, logger: logger}
}

// List returns all live users.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Get returns a live user.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.Get(ctx, id)
}

// Create validates in, hashes its password and stores the account. A
// missing state defaults to activo and a missing avatar to the default one.
func (s *UserService) Create(ctx context.Context, in model.UserInput) (int64, error) {
	if in.Estado == "" {
		in.Estado = model.UserActive
	}
	in, err := normalizeUser(in, true)
	if err != nil {
		return 0, err
	}
	if in.Avatar == "" {
		in.Avatar = model.DefaultAvatar
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, apperr.Persistence("hash password", err)
	}
	in.Password = hash

	id, err := s.users.Create(ctx, in)
	if err != nil {
		return 0, err
	}
	s.logger.Info("user created", "user_id", id, "rol", in.Rol)
	return id, nil
}

// Update changes a user. Empty Rol or Estado keep the stored values, an
// empty Password keeps the current password and an empty Avatar keeps the
// current avatar. A replaced avatar file is removed after the update.
func (s *UserService) Update(ctx context.Context, id int64, in model.UserInput) error {
	current, err := s.users.Get(ctx, id)
	if err != nil {
		return err
	}
	if in.Rol == "" {
		in.Rol = current.Rol
	}
	if in.Estado == "" {
		in.Estado = current.Estado
	}

	in, err = normalizeUser(in, false)
	if err != nil {
		return err
	}
	if in.Password != "" {
		hash, err := auth.HashPassword(in.Password)
		if err != nil {
			return apperr.Persistence("hash password", err)
		}
		in.Password = hash
	}

	if err := s.users.Update(ctx, id, in); err != nil {
		return err
	}
	if in.Avatar != "" && in.Avatar != current.Avatar {
		removeFiles(s.files, s.logger, current.Avatar)
	}
	return nil
}

// Delete soft-deletes the user id on behalf of actorID. Users cannot delete
// their own account.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperr.Forbidden("No puede eliminar su propia cuenta.")
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Usuario no encontrado.")
	}
	s.logger.Info("user deleted", "user_id", id, "by", actorID)
	return nil
}

func normalizeUser(in model.UserInput, passwordRequired bool) (model.UserInput, error) {
	in.Nombre = util.PlainText(in.Nombre)
	fields := map[string]string{}

	if in.Nombre == "" {
		fields["nombre"] = "required"
	}
	switch {
	case in.Password == "" && passwordRequired:
		fields["password"] = "required"
	case in.Password != "" && utf8.RuneCountInString(in.Password) < model.MinPasswordLength:
		fields["password"] = "min"
	}
	if !in.Rol.IsValid() {
		fields["rol"] = "oneof"
	}
	if !in.Estado.IsValid() {
		fields["estado"] = "oneof"
	}

	if len(fields) == 0 {
		return in, nil
	}
	if fields["password"] == "min" && len(fields) == 1 {
		return in, apperr.Validation(
			fmt.Sprintf("La contraseña debe tener al menos %d caracteres.", model.MinPasswordLength), fields)
	}
	return in, apperr.Validation("Datos de usuario inválidos.", fields)
}
