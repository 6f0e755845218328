// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth hashes and verifies panel passwords.
//
// New hashes are argon2id in the PHC string format. Accounts imported with
// bcrypt hashes ($2a$, $2b$, $2y$) still verify and are reported as needing a
// rehash so the login flow can upgrade them.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultParams follow the OWASP second recommendation (m=19456, t=2, p=1).
var DefaultParams = Params{
	Time:    2,
	Memory:  19 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

// ErrUnknownHash is returned for stored hashes in an unrecognised format.
var ErrUnknownHash = errors.New("auth: unknown password hash format")

// HashPassword returns the argon2id hash of password using DefaultParams.
func HashPassword(password string) (string, error) {
	return hashWith(password, DefaultParams)
}

func hashWith(password string, p Params) (string, error) {
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// CheckPassword reports whether password matches encodedHash. A mismatch is
// (false, nil); an error means the stored hash could not be interpreted.
func CheckPassword(password, encodedHash string) (bool, error) {
	if isBcrypt(encodedHash) {
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}

	p, salt, want, err := decodeArgon2(encodedHash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// NeedsRehash reports whether encodedHash should be replaced by a fresh
// HashPassword result: it is bcrypt, malformed, or uses other parameters.
func NeedsRehash(encodedHash string) bool {
	p, _, _, err := decodeArgon2(encodedHash)
	if err != nil {
		return true
	}
	return p.Memory != DefaultParams.Memory ||
		p.Time != DefaultParams.Time ||
		p.Threads != DefaultParams.Threads
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// Equalize runs one password verification against a fixed hash. Login calls
// it for unknown users so the response time does not reveal which names
// exist.
func Equalize(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("cuadros-dummy-password")
	})
	_, _ = CheckPassword(password, dummyHash)
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

func decodeArgon2(encoded string) (Params, []byte, []byte, error) {
	var p Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrUnknownHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("parsing version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, fmt.Errorf("parsing parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decoding salt: %w", err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decoding hash: %w", err)
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}
