// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/store"
	"github.com/galeria-cuadros/cuadros/internal/util"
)

// CategoryService manages categories, their subcategories and the featured
// set.
type CategoryService struct {
	categories *store.CategoryStore
	files      FileRemover
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService. files may be nil.
func NewCategoryService(categories *store.CategoryStore, files FileRemover, logger *slog.Logger) *CategoryService {
	return &CategoryService{categories: categories, files: files, logger: logger}
}

// Create stores a new category with its subcategories.
func (s *CategoryService) Create(ctx context.Context, in model.CategoryInput) (int64, error) {
	id, err := s.categories.Create(ctx, sanitizeCategory(in))
	if err != nil {
		return 0, err
	}
	s.logger.Info("category created", "category_id", id, "subcategories", len(in.Subcategorias))
	return id, nil
}

// Update reconciles a category with in. When in carries a new image the
// previous file is removed once the update has committed.
func (s *CategoryService) Update(ctx context.Context, id int64, in model.CategoryInput) error {
	in = sanitizeCategory(in)

	var previous string
	if in.Imagen != "" {
		current, err := s.categories.Get(ctx, id)
		if err != nil {
			return err
		}
		previous = current.Imagen
	}

	if err := s.categories.Update(ctx, id, in); err != nil {
		return err
	}
	if previous != in.Imagen {
		removeFiles(s.files, s.logger, previous)
	}
	s.logger.Info("category updated", "category_id", id)
	return nil
}

// Delete soft-deletes a category that no live cuadro uses.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	ok, err := s.categories.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Categoría no encontrada.")
	}
	s.logger.Info("category deleted", "category_id", id)
	return nil
}

// List returns all live categories.
func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

// Table returns the admin table rows.
func (s *CategoryService) Table(ctx context.Context) ([]model.CategoryRow, error) {
	return s.categories.Table(ctx)
}

// Subcategories returns the live subcategories of categoryID, or of every
// category when categoryID is zero.
func (s *CategoryService) Subcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error) {
	if categoryID == 0 {
		return s.categories.AllSubcategories(ctx)
	}
	return s.categories.Subcategories(ctx, categoryID)
}

// Featured returns the featured categories.
func (s *CategoryService) Featured(ctx context.Context) ([]model.Category, error) {
	return s.categories.Featured(ctx)
}

// SetFeatured replaces the featured set.
func (s *CategoryService) SetFeatured(ctx context.Context, ids []int64) error {
	if err := s.categories.SetFeatured(ctx, ids); err != nil {
		return err
	}
	s.logger.Info("featured categories replaced", "ids", ids)
	return nil
}

func sanitizeCategory(in model.CategoryInput) model.CategoryInput {
	in.Nombre = util.PlainText(in.Nombre)
	subs := make([]string, len(in.Subcategorias))
	for i, name := range in.Subcategorias {
		subs[i] = util.PlainText(name)
	}
	in.Subcategorias = subs
	return in
}
