// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		rol  Role
		want bool
	}{
		{name: "admin role", rol: RoleAdmin, want: true},
		{name: "editor role", rol: RoleEditor, want: false},
		{name: "viewer role", rol: RoleViewer, want: false},
		{name: "empty role", rol: "", want: false},
		{name: "Admin uppercase", rol: "Admin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Rol: tt.rol}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserStateIsValid(t *testing.T) {
	for _, s := range []UserState{UserActive, UserInactive} {
		if !s.IsValid() {
			t.Errorf("%q should be valid", s)
		}
	}
	for _, s := range []UserState{"", "Activo", "bloqueado"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}
