// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/store"
	"github.com/galeria-cuadros/cuadros/internal/util"
)

// HomeCuadros is the number of random cuadros shown on the home page.
const HomeCuadros = 8

// CuadroService manages cuadros and serves the public catalog.
type CuadroService struct {
	cuadros *store.CuadroStore
	files   FileRemover
	logger  *slog.Logger
}

// NewCuadroService creates a CuadroService. files may be nil.
func NewCuadroService(cuadros *store.CuadroStore, files FileRemover, logger *slog.Logger) *CuadroService {
	return &CuadroService{cuadros: cuadros, files: files, logger: logger}
}

// Create stores a cuadro with its ordered images.
func (s *CuadroService) Create(ctx context.Context, in model.CuadroInput) (int64, error) {
	id, err := s.cuadros.Create(ctx, sanitizeCuadro(in))
	if err != nil {
		return 0, err
	}
	s.logger.Info("cuadro created", "cuadro_id", id, "images", len(in.Imagenes))
	return id, nil
}

// Update replaces a cuadro's fields and image list. Image files dropped from
// the list are removed after the update has committed.
func (s *CuadroService) Update(ctx context.Context, id int64, in model.CuadroInput) error {
	removed, err := s.cuadros.Update(ctx, id, sanitizeCuadro(in))
	if err != nil {
		return err
	}
	removeFiles(s.files, s.logger, removed...)
	s.logger.Info("cuadro updated", "cuadro_id", id, "images_removed", len(removed))
	return nil
}

// Delete soft-deletes a cuadro. Its image files stay, so the row can be
// restored by hand.
func (s *CuadroService) Delete(ctx context.Context, id int64) error {
	ok, err := s.cuadros.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Cuadro no encontrado.")
	}
	s.logger.Info("cuadro deleted", "cuadro_id", id)
	return nil
}

// Get returns a cuadro with its images.
func (s *CuadroService) Get(ctx context.Context, id int64) (*model.CuadroDetail, error) {
	return s.cuadros.Get(ctx, id)
}

// List returns all live cuadros, optionally only those of one category.
func (s *CuadroService) List(ctx context.Context, categoria string) ([]model.Cuadro, error) {
	return s.cuadros.List(ctx, strings.TrimSpace(categoria))
}

// Catalog returns one page of the public catalog.
func (s *CuadroService) Catalog(ctx context.Context, q model.CatalogQuery) (*model.CatalogPage, error) {
	return s.cuadros.Catalog(ctx, q)
}

// Highlights returns the random selection shown on the home page.
func (s *CuadroService) Highlights(ctx context.Context) ([]model.Cuadro, error) {
	return s.cuadros.Random(ctx, HomeCuadros)
}

// sanitizeCuadro strips markup from the title. The description is Markdown
// and is sanitized when rendered.
func sanitizeCuadro(in model.CuadroInput) model.CuadroInput {
	in.Titulo = util.PlainText(in.Titulo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	return in
}
