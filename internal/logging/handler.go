// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that enriches records with
// request-scoped attributes carried in the context: the chi request id, the
// request path and the signed-in user.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

// ContextHandler is a slog.Handler that wraps another handler and adds the
// attributes stored in the record's context.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

// New returns a text logger writing to w at level, wrapped in a
// ContextHandler.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(NewContextHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// Enabled implements slog.Handler.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if id := chimw.GetReqID(ctx); id != "" {
			r.AddAttrs(slog.String("request_id", id))
		}
		if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
			r.AddAttrs(attrs...)
		}
	}
	return h.inner.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

// WithAttrs returns a context whose log records carry attrs in addition to
// any attributes already stored in ctx.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	merged := make([]slog.Attr, 0, len(existing)+len(attrs))
	merged = append(merged, existing...)
	merged = append(merged, attrs...)
	return context.WithValue(ctx, ctxKey{}, merged)
}

// WithUserID tags ctx with the signed-in user's id.
func WithUserID(ctx context.Context, id int64) context.Context {
	return WithAttrs(ctx, slog.Int64("user_id", id))
}

// Middleware tags every request context with the request method and path.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithAttrs(r.Context(), slog.String("method", r.Method), slog.String("path", r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParseLevel parses debug, info, warn or error (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
