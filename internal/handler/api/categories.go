// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/galeria-cuadros/cuadros/internal/handler"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/upload"
)

// ListCategories handles GET /api/categorias.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, cats)
}

// CategoryTable handles GET /api/categorias/tabla.
func (h *Handler) CategoryTable(w http.ResponseWriter, r *http.Request) {
	rows, err := h.categories.Table(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, rows)
}

// FeaturedCategories handles GET /api/categorias/destacadas.
func (h *Handler) FeaturedCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.Featured(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, cats)
}

// SetFeaturedCategories handles POST /api/categorias/destacadas. The body
// replaces the whole featured set.
func (h *Handler) SetFeaturedCategories(w http.ResponseWriter, r *http.Request) {
	var req FeaturedRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.categories.SetFeatured(r.Context(), req.IDs); err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Categorías destacadas actualizadas."})
}

// CreateCategory handles POST /api/categorias.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, file, err := h.decodeCategory(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	batch := h.uploads.NewBatch(h.logger)
	var imagen string
	if file != nil {
		if imagen, err = batch.Save(file, upload.KindCategory); err != nil {
			batch.Discard()
			h.writeError(w, r, err)
			return
		}
	}

	id, err := h.categories.Create(r.Context(), req.Input(imagen))
	if err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusCreated, MessageResponse{Message: "Categoría creada correctamente.", ID: id})
}

// UpdateCategory handles PUT /api/categorias/{id}. Subcategories missing
// from the body are removed, new names are added and existing ones kept.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	req, file, err := h.decodeCategory(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.check(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	batch := h.uploads.NewBatch(h.logger)
	var imagen string
	if file != nil {
		if imagen, err = batch.Save(file, upload.KindCategory); err != nil {
			batch.Discard()
			h.writeError(w, r, err)
			return
		}
	}

	if err := h.categories.Update(r.Context(), id, req.Input(imagen)); err != nil {
		batch.Discard()
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Categoría actualizada correctamente.", ID: id})
}

// DeleteCategory handles DELETE /api/categorias/{id}. A category whose
// subcategories are used by live cuadros answers 409.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireID(w, r)
	if !ok {
		return
	}
	if err := h.categories.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Categoría eliminada correctamente.", ID: id})
}

// ListSubcategories handles GET /api/subcategorias.
func (h *Handler) ListSubcategories(w http.ResponseWriter, r *http.Request) {
	subs, err := h.categories.Subcategories(r.Context(), 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, subs)
}

// SubcategoriesByCategory handles GET /api/subcategorias/categoria?categoria_id=N.
func (h *Handler) SubcategoriesByCategory(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("categoria_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if raw == "" || err != nil || id <= 0 {
		middleware.WriteAPIError(w, http.StatusBadRequest, "validation_error",
			"Debe indicar una categoría válida.", map[string]string{"categoria_id": "required"})
		return
	}
	subs, err := h.categories.Subcategories(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	handler.WriteJSON(w, http.StatusOK, subs)
}
