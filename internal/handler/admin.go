// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/render"
	"github.com/galeria-cuadros/cuadros/internal/service"
	"github.com/galeria-cuadros/cuadros/internal/store"
)

// DashboardData is the admin dashboard content.
type DashboardData struct {
	Counts  model.DashboardCounts `json:"counts"`
	Cuadros []model.Cuadro        `json:"cuadros"`
}

// AdminHandler serves the admin panel pages.
type AdminHandler struct {
	db       *sqlx.DB
	cuadros  *service.CuadroService
	renderer *render.Renderer
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sqlx.DB, cuadros *service.CuadroService, renderer *render.Renderer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		db:       db,
		cuadros:  cuadros,
		renderer: renderer,
		logger:   logger,
	}
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := store.Counts(ctx, h.db)
	if err != nil {
		respondError(w, r, h.renderer, h.logger, err)
		return
	}
	cuadros, err := h.cuadros.List(ctx, "")
	if err != nil {
		respondError(w, r, h.renderer, h.logger, err)
		return
	}

	data := DashboardData{Counts: counts, Cuadros: cuadros}
	if middleware.WantsJSON(r) {
		WriteJSON(w, http.StatusOK, data)
		return
	}
	renderStatus(w, r, h.renderer, h.logger, http.StatusOK, "admin/dashboard", render.TemplateData{
		Title: "Panel",
		Data:  data,
	})
}
