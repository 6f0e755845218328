// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the server-rendered pages, the login flow and
// the helpers shared with the JSON API handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/render"
)

// Route paths used in redirects.
const (
	RouteRoot     = "/"
	RouteAdmin    = "/admin"
	RouteLogin    = "/login"
	RouteCatalogo = "/catalogo"
)

// ErrInvalidID is returned for a malformed or non-positive id parameter.
var ErrInvalidID = errors.New("invalid id")

// ParseURLParamInt64 parses a positive integer chi URL parameter.
func ParseURLParamInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// ParseIDParam parses the {id} URL parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return ParseURLParamInt64(r, "id")
}

// WriteJSON writes data as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes err as a JSON error body. Persistence failures are
// logged and answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindPersistence {
		logger.ErrorContext(r.Context(), "request failed", "error", err)
	}
	middleware.WriteAPIError(w, kind.HTTPStatus(), kind.String(), apperr.PublicMessage(err), apperr.FieldsOf(err))
}

// errorPage is the view model of pages/error.
type errorPage struct {
	Status  int
	Message string
}

// respondError answers with JSON for API clients and with the error page
// otherwise.
func respondError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, logger *slog.Logger, err error) {
	if renderer == nil || middleware.WantsJSON(r) {
		WriteError(w, r, logger, err)
		return
	}
	kind := apperr.KindOf(err)
	if kind == apperr.KindPersistence {
		logger.ErrorContext(r.Context(), "request failed", "error", err)
	}
	renderStatus(w, r, renderer, logger, kind.HTTPStatus(), "pages/error", render.TemplateData{
		Title: http.StatusText(kind.HTTPStatus()),
		Data:  errorPage{Status: kind.HTTPStatus(), Message: apperr.PublicMessage(err)},
	})
}

// renderStatus renders a page, falling back to a plain 500 when the
// template fails.
func renderStatus(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, logger *slog.Logger, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logger.ErrorContext(r.Context(), "render failed", "template", name, "error", err)
		http.Error(w, "Error interno del servidor.", http.StatusInternalServerError)
	}
}

// ErrorPages answers unmatched routes and methods.
type ErrorPages struct {
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewErrorPages creates ErrorPages.
func NewErrorPages(renderer *render.Renderer, logger *slog.Logger) *ErrorPages {
	return &ErrorPages{renderer: renderer, logger: logger}
}

// NotFound handles unmatched routes.
func (h *ErrorPages) NotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, h.renderer, h.logger, apperr.NotFound("Página no encontrada."))
}

// MethodNotAllowed handles routes matched with the wrong method.
func (h *ErrorPages) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Método no permitido.", nil)
}
