// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/testutil"
)

type fakeCredentials struct {
	users   map[string]*model.User
	updated map[int64]string
	err     error
}

func (f *fakeCredentials) GetByName(_ context.Context, nombre string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[nombre]
	if !ok {
		return nil, apperr.NotFound("Usuario no encontrado.")
	}
	return u, nil
}

func (f *fakeCredentials) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	if f.updated == nil {
		f.updated = map[int64]string{}
	}
	f.updated[id] = hash
	return nil
}

func newFakeCredentials(t *testing.T) *fakeCredentials {
	t.Helper()
	hash, err := auth.HashPassword("admin123")
	require.NoError(t, err)
	return &fakeCredentials{users: map[string]*model.User{
		"admin": {ID: 1, Nombre: "admin", PasswordHash: hash, Rol: model.RoleAdmin,
			Estado: model.UserActive, Avatar: model.DefaultAvatar},
		"inactivo": {ID: 2, Nombre: "inactivo", PasswordHash: hash, Rol: model.RoleViewer,
			Estado: model.UserInactive},
	}}
}

func TestAuthenticate(t *testing.T) {
	creds := newFakeCredentials(t)
	a := NewAuthenticator(creds, testutil.TestLogger())

	u, err := a.Authenticate(context.Background(), " admin ", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.SessionUser{ID: 1, Nombre: "admin", Rol: model.RoleAdmin, Avatar: model.DefaultAvatar}, u)
	assert.Empty(t, creds.updated, "a current hash must not be rewritten")
}

func TestAuthenticate_SameErrorForUnknownAndWrong(t *testing.T) {
	a := NewAuthenticator(newFakeCredentials(t), testutil.TestLogger())

	_, errUnknown := a.Authenticate(context.Background(), "nadie", "admin123")
	_, errWrong := a.Authenticate(context.Background(), "admin", "incorrecta")

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(errUnknown))
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(errWrong))
}

func TestAuthenticate_Inactive(t *testing.T) {
	a := NewAuthenticator(newFakeCredentials(t), testutil.TestLogger())

	_, err := a.Authenticate(context.Background(), "inactivo", "admin123")
	assert.ErrorIs(t, err, ErrAccountInactive)

	// A wrong password on an inactive account reveals nothing about the state.
	_, err = a.Authenticate(context.Background(), "inactivo", "otra")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_MissingFields(t *testing.T) {
	a := NewAuthenticator(newFakeCredentials(t), testutil.TestLogger())

	for _, tc := range [][2]string{{"", "x"}, {"admin", ""}, {"   ", "x"}} {
		_, err := a.Authenticate(context.Background(), tc[0], tc[1])
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "input %q", tc)
	}
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	creds := &fakeCredentials{err: apperr.Persistence("get user by name", errors.New("disk I/O error"))}
	a := NewAuthenticator(creds, testutil.TestLogger())

	_, err := a.Authenticate(context.Background(), "admin", "admin123")
	assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
}

func TestAuthenticate_UpgradesBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("viejo"), bcrypt.MinCost)
	require.NoError(t, err)
	creds := &fakeCredentials{users: map[string]*model.User{
		"editor": {ID: 7, Nombre: "editor", PasswordHash: string(legacy), Rol: model.RoleEditor, Estado: model.UserActive},
	}}
	a := NewAuthenticator(creds, testutil.TestLogger())

	u, err := a.Authenticate(context.Background(), "editor", "viejo")
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)

	require.Contains(t, creds.updated, int64(7))
	ok, err := auth.CheckPassword("viejo", creds.updated[7])
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, auth.NeedsRehash(creds.updated[7]))
}
