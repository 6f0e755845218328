// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/store"
	"github.com/galeria-cuadros/cuadros/internal/testutil"
)

func newUserService(t *testing.T) (*UserService, *store.UserStore, *recordingRemover) {
	t.Helper()
	users := store.NewUserStore(testutil.TestDB(t))
	files := &recordingRemover{}
	return NewUserService(users, files, testutil.TestLogger()), users, files
}

func TestUserService_Create(t *testing.T) {
	svc, users, _ := newUserService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, model.UserInput{Nombre: " <b>ana</b> ", Password: "clave", Rol: model.RoleEditor})
	require.NoError(t, err)

	u, err := users.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Nombre)
	assert.Equal(t, model.RoleEditor, u.Rol)
	assert.Equal(t, model.UserActive, u.Estado)
	assert.Equal(t, model.DefaultAvatar, u.Avatar)
	assert.NotEqual(t, "clave", u.PasswordHash)

	ok, err := auth.CheckPassword("clave", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUserService_CreateValidation(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    model.UserInput
		field string
	}{
		{"missing name", model.UserInput{Password: "clave", Rol: model.RoleViewer}, "nombre"},
		{"missing password", model.UserInput{Nombre: "a", Rol: model.RoleViewer}, "password"},
		{"short password", model.UserInput{Nombre: "a", Password: "abc", Rol: model.RoleViewer}, "password"},
		{"bad role", model.UserInput{Nombre: "a", Password: "clave", Rol: "root"}, "rol"},
		{"missing role", model.UserInput{Nombre: "a", Password: "clave"}, "rol"},
		{"bad state", model.UserInput{Nombre: "a", Password: "clave", Rol: model.RoleViewer, Estado: "borrado"}, "estado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Contains(t, apperr.FieldsOf(err), tt.field)
		})
	}
}

func TestUserService_ShortPasswordMessage(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.Create(context.Background(), model.UserInput{Nombre: "a", Password: "ñññ", Rol: model.RoleViewer})
	require.Error(t, err)
	assert.Equal(t, "La contraseña debe tener al menos 4 caracteres.", apperr.PublicMessage(err))

	// Four runes are enough even when they take more bytes.
	_, err = svc.Create(context.Background(), model.UserInput{Nombre: "b", Password: "ññññ", Rol: model.RoleViewer})
	assert.NoError(t, err)
}

func TestUserService_CreateDuplicate(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.UserInput{Nombre: "ana", Password: "clave", Rol: model.RoleViewer})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.UserInput{Nombre: "ana", Password: "clave", Rol: model.RoleViewer})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUserService_Update(t *testing.T) {
	svc, users, files := newUserService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, model.UserInput{Nombre: "ana", Password: "clave", Rol: model.RoleViewer,
		Avatar: "/uploads/avatars/avatar-1-ana.png"})
	require.NoError(t, err)
	before, err := users.Get(ctx, id)
	require.NoError(t, err)

	// Name only: role, state, password and avatar are kept.
	require.NoError(t, svc.Update(ctx, id, model.UserInput{Nombre: "ana maría"}))
	u, err := users.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ana maría", u.Nombre)
	assert.Equal(t, model.RoleViewer, u.Rol)
	assert.Equal(t, model.UserActive, u.Estado)
	assert.Equal(t, before.PasswordHash, u.PasswordHash)
	assert.Equal(t, "/uploads/avatars/avatar-1-ana.png", u.Avatar)
	assert.Empty(t, files.Removed())

	// New password and avatar: the old avatar file is removed.
	require.NoError(t, svc.Update(ctx, id, model.UserInput{Nombre: "ana maría", Password: "nueva",
		Rol: model.RoleAdmin, Estado: model.UserInactive, Avatar: "/uploads/avatars/avatar-2-ana.png"}))
	u, err = users.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Rol)
	assert.Equal(t, model.UserInactive, u.Estado)
	ok, err := auth.CheckPassword("nueva", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"/uploads/avatars/avatar-1-ana.png"}, files.Removed())
}

func TestUserService_UpdateKeepsDefaultAvatarFile(t *testing.T) {
	svc, _, files := newUserService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, model.UserInput{Nombre: "ana", Password: "clave", Rol: model.RoleViewer})
	require.NoError(t, err)
	require.NoError(t, svc.Update(ctx, id, model.UserInput{Nombre: "ana", Avatar: "/uploads/avatars/avatar-3-ana.png"}))
	assert.Empty(t, files.Removed(), "the shared default avatar must never be removed")
}

func TestUserService_UpdateValidation(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, model.UserInput{Nombre: "ana", Password: "clave", Rol: model.RoleViewer})
	require.NoError(t, err)

	err = svc.Update(ctx, id, model.UserInput{Nombre: "ana", Password: "abc"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.Update(ctx, 999, model.UserInput{Nombre: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_Delete(t *testing.T) {
	svc, users, _ := newUserService(t)
	ctx := context.Background()

	admin, err := svc.Create(ctx, model.UserInput{Nombre: "admin", Password: "clave", Rol: model.RoleAdmin})
	require.NoError(t, err)
	other, err := svc.Create(ctx, model.UserInput{Nombre: "otro", Password: "clave", Rol: model.RoleAdmin})
	require.NoError(t, err)

	err = svc.Delete(ctx, admin, admin)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, admin, other))
	_, err = users.Get(ctx, other)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = svc.Delete(ctx, admin, other)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
