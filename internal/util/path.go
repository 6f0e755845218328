// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrPathEscapes is returned when a joined path leaves its base directory.
var ErrPathEscapes = errors.New("path escapes base directory")

// SplitFilename returns the slug of a client-supplied filename's stem and
// its lowercased extension without the dot. Directory components are
// discarded, so "../../x/Mi Foto.JPG" yields ("mi-foto", "jpg").
func SplitFilename(name string) (stem, ext string) {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == ".." || base == "/" {
		return "", ""
	}
	ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(base), "."))
	return Slugify(strings.TrimSuffix(base, filepath.Ext(base))), ext
}

// JoinWithin joins rel onto base and fails when the result would resolve
// outside base. A leading slash on rel is ignored.
func JoinWithin(base, rel string) (string, error) {
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absBase, filepath.FromSlash(strings.TrimLeft(rel, "/")))
	if full == absBase || !strings.HasPrefix(full, absBase+string(filepath.Separator)) {
		return "", ErrPathEscapes
	}
	return full, nil
}
