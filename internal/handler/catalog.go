// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/render"
	"github.com/galeria-cuadros/cuadros/internal/service"
)

// HomeData is the home page content.
type HomeData struct {
	Cuadros    []model.Cuadro   `json:"cuadros"`
	Destacadas []model.Category `json:"destacadas"`
}

// catalogView is the view model of pages/catalogo.
type catalogView struct {
	Page       *model.CatalogPage
	Categorias []model.Category
	Pagination Pagination
}

// CatalogHandler serves the public pages.
type CatalogHandler struct {
	cuadros    *service.CuadroService
	categories *service.CategoryService
	renderer   *render.Renderer
	pageSize   int
	logger     *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler. pageSize is the default
// catalog page size.
func NewCatalogHandler(cuadros *service.CuadroService, categories *service.CategoryService, renderer *render.Renderer, pageSize int, logger *slog.Logger) *CatalogHandler {
	if pageSize < 1 {
		pageSize = model.DefaultCatalogPageSize
	}
	return &CatalogHandler{
		cuadros:    cuadros,
		categories: categories,
		renderer:   renderer,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// Home handles GET /: a random selection of cuadros and the featured
// categories.
func (h *CatalogHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cuadros, err := h.cuadros.Highlights(ctx)
	if err != nil {
		respondError(w, r, h.renderer, h.logger, err)
		return
	}
	destacadas, err := h.categories.Featured(ctx)
	if err != nil {
		respondError(w, r, h.renderer, h.logger, err)
		return
	}

	data := HomeData{Cuadros: cuadros, Destacadas: destacadas}
	if middleware.WantsJSON(r) {
		WriteJSON(w, http.StatusOK, data)
		return
	}
	renderStatus(w, r, h.renderer, h.logger, http.StatusOK, "pages/home", render.TemplateData{
		Title: "Inicio",
		Data:  data,
	})
}

// Catalog handles GET /catalogo?page=&limit=&categoria=&subcategoria=&search=.
func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	qs := r.URL.Query()

	q := model.ParseCatalogQuery(qs.Get("page"), qs.Get("limit"), h.pageSize, model.CatalogFilter{
		Categoria:    qs.Get("categoria"),
		Subcategoria: qs.Get("subcategoria"),
		Search:       qs.Get("search"),
	})

	page, err := h.cuadros.Catalog(ctx, q)
	if err != nil {
		respondError(w, r, h.renderer, h.logger, err)
		return
	}
	if middleware.WantsJSON(r) {
		WriteJSON(w, http.StatusOK, page)
		return
	}

	categorias, err := h.categories.List(ctx)
	if err != nil {
		respondError(w, r, h.renderer, h.logger, err)
		return
	}
	renderStatus(w, r, h.renderer, h.logger, http.StatusOK, "pages/catalogo", render.TemplateData{
		Title: "Catálogo",
		Data: catalogView{
			Page:       page,
			Categorias: categorias,
			Pagination: BuildPagination(page, h.pageSize),
		},
	})
}
