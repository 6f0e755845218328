// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides small helpers shared across packages: filename
// slugs, safe path joining and plain-text sanitizing.
package util

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var (
	slugRegex       = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxSlugLength bounds slugs used inside upload filenames.
const maxSlugLength = 60

// Slugify converts a string to an ASCII slug: transliterated, lowercase,
// words joined by single hyphens. "Óleo sobre Lienzo ñ" becomes
// "oleo-sobre-lienzo-n".
func Slugify(s string) string {
	result := strings.ToLower(unidecode.Unidecode(s))
	result = strings.Join(strings.Fields(result), "-")
	result = slugRegex.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxSlugLength {
		result = strings.TrimRight(result[:maxSlugLength], "-")
	}
	return result
}
