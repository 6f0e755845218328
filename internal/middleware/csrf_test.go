// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	dev := DefaultCSRFConfig(testCSRFKey, true)
	if len(dev.TrustedOrigins) != 2 {
		t.Errorf("expected 2 TrustedOrigins in dev mode, got %d", len(dev.TrustedOrigins))
	}
	for _, origin := range dev.TrustedOrigins {
		if len(origin) > 4 && origin[:4] == "http" {
			t.Errorf("TrustedOrigin should be host:port, not full URL: %s", origin)
		}
	}

	prod := DefaultCSRFConfig(testCSRFKey, false)
	if len(prod.TrustedOrigins) != 0 {
		t.Errorf("expected no TrustedOrigins in production, got %d", len(prod.TrustedOrigins))
	}
}

func TestCSRF(t *testing.T) {
	h := CSRF(DefaultCSRFConfig(testCSRFKey, false))(okHandler())

	tests := []struct {
		name       string
		method     string
		fetchSite  string
		accept     string
		wantStatus int
	}{
		{"same-origin post", http.MethodPost, "same-origin", "", http.StatusOK},
		{"post without fetch metadata", http.MethodPost, "", "", http.StatusOK},
		{"cross-site post", http.MethodPost, "cross-site", "", http.StatusForbidden},
		{"cross-site json delete", http.MethodDelete, "cross-site", "application/json", http.StatusForbidden},
		{"cross-site get", http.MethodGet, "cross-site", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/cuadros/1", nil)
			if tt.fetchSite != "" {
				req.Header.Set("Sec-Fetch-Site", tt.fetchSite)
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.accept == "application/json" && rec.Code == http.StatusForbidden {
				var body APIError
				if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Code != "csrf_failed" {
					t.Errorf("expected csrf_failed JSON body, got %v %+v", err, body)
				}
			}
		})
	}
}
