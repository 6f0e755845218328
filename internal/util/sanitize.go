// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// PlainText strips every HTML tag from s and trims it. Names and titles
// are stored as plain text; entities produced by the policy are decoded
// again so "Rojo & Azul" survives unchanged.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}
