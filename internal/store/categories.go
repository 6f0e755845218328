// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

const categoryColumns = `id, nombre, COALESCE(color, '') AS color, COALESCE(imagen, '') AS imagen, is_featured, is_deleted`

// CategoryStore persists categories and reconciles their subcategory sets.
type CategoryStore struct {
	db    *sqlx.DB
	names model.NamePolicy
}

// NewCategoryStore creates a CategoryStore comparing subcategory names
// under the given policy.
func NewCategoryStore(db *sqlx.DB, names model.NamePolicy) *CategoryStore {
	return &CategoryStore{db: db, names: names}
}

// NamePolicy returns the subcategory name policy in effect.
func (s *CategoryStore) NamePolicy() model.NamePolicy {
	return s.names
}

// normalizeInput trims the input and checks the preconditions shared by
// Create and Update.
func (s *CategoryStore) normalizeInput(in model.CategoryInput) (model.CategoryInput, error) {
	in.Nombre = strings.TrimSpace(in.Nombre)
	in.Color = strings.TrimSpace(in.Color)
	in.Imagen = strings.TrimSpace(in.Imagen)

	if in.Nombre == "" {
		return in, apperr.Validation("El nombre de la categoría es obligatorio.",
			map[string]string{"nombre": "required"})
	}
	if len(in.Subcategorias) == 0 {
		return in, apperr.Validation("Debe proporcionar al menos una subcategoría.",
			map[string]string{"subcategorias": "required"})
	}

	seen := make(map[string]struct{}, len(in.Subcategorias))
	names := make([]string, 0, len(in.Subcategorias))
	for _, name := range in.Subcategorias {
		name = strings.TrimSpace(name)
		if name == "" {
			return in, apperr.Validation("Los nombres de subcategoría no pueden estar vacíos.",
				map[string]string{"subcategorias": "empty"})
		}
		key := s.names.Key(name)
		if _, dup := seen[key]; dup {
			return in, apperr.Validation(fmt.Sprintf("La subcategoría %q está repetida.", name),
				map[string]string{"subcategorias": "duplicate"})
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	in.Subcategorias = names
	return in, nil
}

// Create inserts a category and its subcategories in one transaction and
// returns the new category id. Subcategories are inserted in input order.
func (s *CategoryStore) Create(ctx context.Context, in model.CategoryInput) (int64, error) {
	in, err := s.normalizeInput(in)
	if err != nil {
		return 0, err
	}

	var id int64
	err = InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categorias (nombre, color, imagen) VALUES (?, ?, ?)`,
			in.Nombre, nullIfEmpty(in.Color), nullIfEmpty(in.Imagen))
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		return insertSubcategories(ctx, tx, id, in.Subcategorias)
	})
	if err != nil {
		return 0, translate("create category", err, "Ya existe una categoría con ese nombre.")
	}
	return id, nil
}

// Update applies the desired name, colour, image and subcategory set to a
// live category in one transaction.
//
// Subcategories are matched by name: names present both in the database and
// in the desired set keep their ids, so cuadros referencing them are
// untouched. Missing names are soft-deleted unless a live cuadro references
// them, in which case the whole update fails with a conflict naming the
// subcategory. New names are inserted.
func (s *CategoryStore) Update(ctx context.Context, id int64, in model.CategoryInput) error {
	in, err := s.normalizeInput(in)
	if err != nil {
		return err
	}

	err = InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := requireLiveCategory(ctx, tx, id); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE categorias
			    SET nombre = ?, color = ?, imagen = COALESCE(?, imagen)
			  WHERE id = ?`,
			in.Nombre, nullIfEmpty(in.Color), nullIfEmpty(in.Imagen), id); err != nil {
			return err
		}

		var current []model.Subcategory
		if err := tx.SelectContext(ctx, &current,
			`SELECT id, nombre, categoria_id, is_deleted
			   FROM subcategorias
			  WHERE categoria_id = ? AND is_deleted = 0
			  ORDER BY id`, id); err != nil {
			return err
		}

		toDelete, toAdd := diffSubcategories(s.names, current, in.Subcategorias)

		for _, sub := range toDelete {
			inUse, err := subcategoryInUse(ctx, tx, sub.ID)
			if err != nil {
				return err
			}
			if inUse {
				return apperr.Conflict(fmt.Sprintf(
					"No se puede eliminar la subcategoría %q porque está en uso.", sub.Nombre))
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE subcategorias SET is_deleted = 1 WHERE id = ?`, sub.ID); err != nil {
				return err
			}
		}

		return insertSubcategories(ctx, tx, id, toAdd)
	})
	return translate("update category", err, "Ya existe una categoría con ese nombre.")
}

// diffSubcategories compares the live subcategories with the desired names.
// It returns the subcategories to soft-delete and the names to insert, in
// their original order.
func diffSubcategories(policy model.NamePolicy, current []model.Subcategory, desired []string) (toDelete []model.Subcategory, toAdd []string) {
	want := make(map[string]struct{}, len(desired))
	for _, name := range desired {
		want[policy.Key(name)] = struct{}{}
	}
	have := make(map[string]struct{}, len(current))
	for _, sub := range current {
		key := policy.Key(sub.Nombre)
		have[key] = struct{}{}
		if _, ok := want[key]; !ok {
			toDelete = append(toDelete, sub)
		}
	}
	for _, name := range desired {
		if _, ok := have[policy.Key(name)]; !ok {
			toAdd = append(toAdd, name)
		}
	}
	return toDelete, toAdd
}

// Delete soft-deletes a category and all its subcategories. It fails with a
// conflict when a live cuadro references any of the subcategories, and
// returns false when the category is missing or already deleted.
func (s *CategoryStore) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		var inUse bool
		if err := tx.GetContext(ctx, &inUse,
			`SELECT EXISTS (
			     SELECT 1 FROM cuadros c
			       JOIN subcategorias s ON c.subcategoria_id = s.id
			      WHERE s.categoria_id = ? AND c.is_deleted = 0
			 )`, id); err != nil {
			return err
		}
		if inUse {
			return apperr.Conflict("No se puede eliminar. La categoría está en uso por uno o más cuadros.")
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE categorias SET is_deleted = 1, is_featured = 0 WHERE id = ? AND is_deleted = 0`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		deleted = true

		_, err = tx.ExecContext(ctx,
			`UPDATE subcategorias SET is_deleted = 1 WHERE categoria_id = ? AND is_deleted = 0`, id)
		return err
	})
	if err != nil {
		return false, translate("delete category", err, "La categoría está en uso.")
	}
	return deleted, nil
}

// Get returns a live category.
func (s *CategoryStore) Get(ctx context.Context, id int64) (*model.Category, error) {
	var c model.Category
	err := s.db.GetContext(ctx, &c,
		`SELECT `+categoryColumns+` FROM categorias WHERE id = ? AND is_deleted = 0`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Categoría no encontrada.")
	}
	if err != nil {
		return nil, apperr.Persistence("get category", err)
	}
	return &c, nil
}

// List returns all live categories, newest first.
func (s *CategoryStore) List(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.SelectContext(ctx, &categories,
		`SELECT `+categoryColumns+` FROM categorias WHERE is_deleted = 0 ORDER BY id DESC`); err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	return categories, nil
}

// Table returns all live categories with the names of their live
// subcategories.
func (s *CategoryStore) Table(ctx context.Context) ([]model.CategoryRow, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.AllSubcategories(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]string, len(categories))
	for _, sub := range subs {
		byCategory[sub.CategoriaID] = append(byCategory[sub.CategoriaID], sub.Nombre)
	}

	rows := make([]model.CategoryRow, 0, len(categories))
	for _, c := range categories {
		names := byCategory[c.ID]
		if names == nil {
			names = []string{}
		}
		rows = append(rows, model.CategoryRow{Category: c, Subcategorias: names})
	}
	return rows, nil
}

// AllSubcategories returns every live subcategory of a live category.
func (s *CategoryStore) AllSubcategories(ctx context.Context) ([]model.Subcategory, error) {
	subs := []model.Subcategory{}
	if err := s.db.SelectContext(ctx, &subs,
		`SELECT s.id, s.nombre, s.categoria_id, s.is_deleted
		   FROM subcategorias s
		   JOIN categorias c ON c.id = s.categoria_id
		  WHERE s.is_deleted = 0 AND c.is_deleted = 0
		  ORDER BY s.id`); err != nil {
		return nil, apperr.Persistence("list subcategories", err)
	}
	return subs, nil
}

// Subcategories returns the live subcategories of one category.
func (s *CategoryStore) Subcategories(ctx context.Context, categoryID int64) ([]model.Subcategory, error) {
	subs := []model.Subcategory{}
	if err := s.db.SelectContext(ctx, &subs,
		`SELECT id, nombre, categoria_id, is_deleted
		   FROM subcategorias
		  WHERE categoria_id = ? AND is_deleted = 0
		  ORDER BY id`, categoryID); err != nil {
		return nil, apperr.Persistence("list subcategories by category", err)
	}
	return subs, nil
}

// Featured returns the featured live categories.
func (s *CategoryStore) Featured(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.db.SelectContext(ctx, &categories,
		`SELECT `+categoryColumns+`
		   FROM categorias
		  WHERE is_featured = 1 AND is_deleted = 0
		  ORDER BY id`); err != nil {
		return nil, apperr.Persistence("list featured categories", err)
	}
	return categories, nil
}

// SetFeatured replaces the featured set with ids. At most
// model.MaxFeaturedCategories distinct live categories may be featured; on
// any error the previous set is left unchanged.
func (s *CategoryStore) SetFeatured(ctx context.Context, ids []int64) error {
	ids = uniqueIDs(ids)
	if len(ids) > model.MaxFeaturedCategories {
		return apperr.Validation(
			fmt.Sprintf("Solo se pueden destacar hasta %d categorías.", model.MaxFeaturedCategories),
			map[string]string{"ids": "max"})
	}

	err := InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if len(ids) > 0 {
			query, args, err := sqlx.In(
				`SELECT COUNT(*) FROM categorias WHERE is_deleted = 0 AND id IN (?)`, ids)
			if err != nil {
				return err
			}
			var live int
			if err := tx.GetContext(ctx, &live, tx.Rebind(query), args...); err != nil {
				return err
			}
			if live != len(ids) {
				return apperr.NotFound("Alguna de las categorías seleccionadas no existe.")
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE categorias SET is_featured = 0 WHERE is_featured = 1`); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		query, args, err := sqlx.In(`UPDATE categorias SET is_featured = 1 WHERE id IN (?)`, ids)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
		return err
	})
	return translate("set featured categories", err, "No se pudieron actualizar las categorías destacadas.")
}

// Count returns the number of live categories.
func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categorias WHERE is_deleted = 0`); err != nil {
		return 0, apperr.Persistence("count categories", err)
	}
	return n, nil
}

func requireLiveCategory(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM categorias WHERE id = ? AND is_deleted = 0)`, id); err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound("La categoría que intentas actualizar no existe.")
	}
	return nil
}

func subcategoryInUse(ctx context.Context, tx *sqlx.Tx, subcategoryID int64) (bool, error) {
	var inUse bool
	err := tx.GetContext(ctx, &inUse,
		`SELECT EXISTS (SELECT 1 FROM cuadros WHERE subcategoria_id = ? AND is_deleted = 0)`,
		subcategoryID)
	return inUse, err
}

func insertSubcategories(ctx context.Context, tx *sqlx.Tx, categoryID int64, names []string) error {
	for _, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subcategorias (nombre, categoria_id) VALUES (?, ?)`, name, categoryID); err != nil {
			return fmt.Errorf("insert subcategory %q: %w", name, err)
		}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
