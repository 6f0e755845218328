// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain types shared by the store, service and
// handler layers: users, categories, subcategories, cuadros and catalog pages.
package model

import (
	"time"
)

// Role is a user's authorization role.
type Role string

// User roles.
const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// ValidRoles lists the roles accepted on user create and update.
var ValidRoles = []Role{RoleAdmin, RoleEditor, RoleViewer}

// IsValid reports whether r is one of ValidRoles.
func (r Role) IsValid() bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, v := range roles {
		if r == v {
			return true
		}
	}
	return false
}

// UserState is the account state an admin toggles from the user table.
type UserState string

// Account states.
const (
	UserActive   UserState = "activo"
	UserInactive UserState = "inactivo"
)

// IsValid reports whether s is a known account state.
func (s UserState) IsValid() bool {
	return s == UserActive || s == UserInactive
}

// DefaultAvatar is assigned to users created without an avatar upload.
const DefaultAvatar = "/uploads/avatars/default.png"

// MinPasswordLength is the shortest password accepted on create or change.
const MinPasswordLength = 4

// User is a panel account.
type User struct {
	ID            int64     `db:"id" json:"id"`
	Nombre        string    `db:"nombre" json:"nombre"`
	PasswordHash  string    `db:"password" json:"-"`
	Rol           Role      `db:"rol" json:"rol"`
	Estado        UserState `db:"estado" json:"estado"`
	Avatar        string    `db:"avatar" json:"avatar"`
	CreadoEn      time.Time `db:"creado_en" json:"creado_en"`
	ActualizadoEn time.Time `db:"actualizado_en" json:"actualizado_en"`
	Status        Status    `db:"is_deleted" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Rol == RoleAdmin
}

// CanLogin reports whether the account may open a session.
func (u *User) CanLogin() bool {
	return u.Status.IsActive() && u.Estado != UserInactive
}

// SessionUser returns the reduced projection kept in session state.
func (u *User) SessionUser() SessionUser {
	return SessionUser{
		ID:     u.ID,
		Nombre: u.Nombre,
		Rol:    u.Rol,
		Avatar: u.Avatar,
	}
}

// SessionUser is the projection of a User stored in the session. It never
// carries the password hash.
type SessionUser struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
	Rol    Role   `json:"rol"`
	Avatar string `json:"avatar"`
}

// UserInput is the validated payload for creating or updating a user.
// An empty Password on update keeps the current one; an empty Avatar keeps
// the current avatar.
type UserInput struct {
	Nombre   string
	Password string
	Rol      Role
	Estado   UserState
	Avatar   string
}
