// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"mime"
	"net/http"
	"strconv"
	"strings"
)

// accepts reports whether the Accept header admits the media type
// typ/sub with a non-zero quality. A missing header admits everything.
func accepts(r *http.Request, typ, sub string) bool {
	header := r.Header.Values("Accept")
	if len(header) == 0 {
		return true
	}
	for _, line := range header {
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			mt, params, err := mime.ParseMediaType(part)
			if err != nil {
				continue
			}
			if q, ok := params["q"]; ok {
				if f, err := strconv.ParseFloat(q, 64); err == nil && f <= 0 {
					continue
				}
			}
			t, s, _ := strings.Cut(mt, "/")
			if (t == "*" || t == typ) && (s == "*" || s == sub) {
				return true
			}
		}
	}
	return false
}

// AcceptsJSON reports whether the client accepts application/json.
func AcceptsJSON(r *http.Request) bool {
	return accepts(r, "application", "json")
}

// AcceptsHTML reports whether the client accepts text/html.
func AcceptsHTML(r *http.Request) bool {
	return accepts(r, "text", "html")
}

// WantsJSON reports whether the response should be JSON: the client
// accepts JSON and does not accept HTML. Browsers and clients sending no
// Accept header get HTML.
func WantsJSON(r *http.Request) bool {
	return AcceptsJSON(r) && !AcceptsHTML(r)
}

// SentJSON reports whether the request body is JSON.
func SentJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
