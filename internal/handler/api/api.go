// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON handlers of the admin panel: categories,
// subcategories, cuadros and users.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/galeria-cuadros/cuadros/internal/handler"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/service"
	"github.com/galeria-cuadros/cuadros/internal/upload"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	categories *service.CategoryService
	cuadros    *service.CuadroService
	users      *service.UserService
	uploads    *upload.Store
	validate   *validator.Validate
	logger     *slog.Logger
}

// Deps are the services the API handlers call.
type Deps struct {
	Categories *service.CategoryService
	Cuadros    *service.CuadroService
	Users      *service.UserService
	Uploads    *upload.Store
	Logger     *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		categories: d.Categories,
		cuadros:    d.Cuadros,
		users:      d.Users,
		uploads:    d.Uploads,
		validate:   newValidator(),
		logger:     d.Logger,
	}
}

// MessageResponse is the body of successful mutations.
type MessageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// Routes mounts the API under r. Every route requires a session; mutations
// are restricted by role.
func (h *Handler) Routes(r chi.Router) {
	r.Use(middleware.RequireAuthenticated)

	r.Route("/categorias", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Get("/tabla", h.CategoryTable)
		r.Get("/destacadas", h.FeaturedCategories)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOrEditor())
			r.Post("/", h.CreateCategory)
			r.Post("/destacadas", h.SetFeaturedCategories)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/subcategorias", func(r chi.Router) {
		r.Get("/", h.ListSubcategories)
		r.Get("/categoria", h.SubcategoriesByCategory)
	})

	r.Route("/cuadros", func(r chi.Router) {
		r.Get("/", h.ListCuadros)
		r.Get("/{id}", h.GetCuadro)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOrEditor())
			r.Post("/crear", h.CreateCuadro)
			r.Put("/{id}", h.UpdateCuadro)
			r.Delete("/{id}", h.DeleteCuadro)
		})
	})

	r.Route("/usuarios", func(r chi.Router) {
		r.Use(middleware.AdminOnly())
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

// writeError writes err as the JSON error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	handler.WriteError(w, r, h.logger, err)
}

// requireID parses the {id} parameter, answering 400 when it is invalid.
func (h *Handler) requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		middleware.WriteAPIError(w, http.StatusBadRequest, "validation_error", "Identificador inválido.",
			map[string]string{"id": "invalid"})
		return 0, false
	}
	return id, true
}
