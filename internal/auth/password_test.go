// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	other, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == other {
		t.Fatal("two hashes of the same password must use different salts")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "admin123", true},
		{"wrong", "admin124", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := CheckPassword(tt.password, hash)
			if err != nil {
				t.Fatalf("CheckPassword error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, ok, tt.want)
			}
		})
	}
}

func TestCheckPassword_KnownArgon2Hash(t *testing.T) {
	// Hash of "changeme" produced with m=65536,t=1,p=4.
	dbHash := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	ok, err := CheckPassword("changeme", dbHash)
	if err != nil {
		t.Fatalf("CheckPassword error: %v", err)
	}
	if !ok {
		t.Fatal("stored hash rejected the correct password")
	}
	if !NeedsRehash(dbHash) {
		t.Error("hash with foreign parameters should need a rehash")
	}
}

func TestCheckPassword_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	ok, err := CheckPassword("secreto", string(legacy))
	if err != nil || !ok {
		t.Fatalf("bcrypt hash rejected: ok=%v err=%v", ok, err)
	}
	ok, err = CheckPassword("otro", string(legacy))
	if err != nil || ok {
		t.Fatalf("bcrypt mismatch: ok=%v err=%v", ok, err)
	}
	if !NeedsRehash(string(legacy)) {
		t.Error("bcrypt hashes must be upgraded")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$argon2i$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=19$bad$a$b"} {
		if ok, err := CheckPassword("x", h); err == nil || ok {
			t.Errorf("CheckPassword with %q: ok=%v err=%v, want error", h, ok, err)
		}
	}
}

func TestNeedsRehash_Current(t *testing.T) {
	hash, err := HashPassword("x")
	if err != nil {
		t.Fatal(err)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash should not need a rehash")
	}
}

func TestEqualize(t *testing.T) {
	// Must not panic and must be callable repeatedly.
	Equalize("a")
	Equalize("b")
}
