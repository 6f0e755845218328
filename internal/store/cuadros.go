// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

// cuadroSelect joins a cuadro with its subcategory and category names and
// picks the lowest-orden image as the representative one.
const cuadroSelect = `
	SELECT c.id, c.titulo, c.descripcion, c.creado_en,
	       s.id AS subcategoria_id, s.nombre AS subcategoria,
	       cat.id AS categoria_id, cat.nombre AS categoria,
	       COALESCE((SELECT ci.imagen_url
	                   FROM cuadro_imagenes ci
	                  WHERE ci.cuadro_id = c.id
	                  ORDER BY ci.orden, ci.id
	                  LIMIT 1), '') AS imagen
	  FROM cuadros c
	  JOIN subcategorias s ON c.subcategoria_id = s.id
	  JOIN categorias cat ON s.categoria_id = cat.id`

// CuadroStore persists cuadros and their ordered images.
type CuadroStore struct {
	db *sqlx.DB
}

// NewCuadroStore creates a CuadroStore.
func NewCuadroStore(db *sqlx.DB) *CuadroStore {
	return &CuadroStore{db: db}
}

func normalizeCuadroInput(in model.CuadroInput) (model.CuadroInput, error) {
	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descripcion = strings.TrimSpace(in.Descripcion)
	if in.Titulo == "" {
		return in, apperr.Validation("El título es obligatorio.", map[string]string{"titulo": "required"})
	}
	if in.SubcategoriaID <= 0 {
		return in, apperr.Validation("Debes seleccionar una subcategoría.",
			map[string]string{"subcategoria": "required"})
	}
	images := make([]string, 0, len(in.Imagenes))
	seen := make(map[string]struct{}, len(in.Imagenes))
	for _, url := range in.Imagenes {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		if _, dup := seen[url]; dup {
			continue
		}
		seen[url] = struct{}{}
		images = append(images, url)
	}
	in.Imagenes = images
	return in, nil
}

// Create inserts a cuadro and its images in one transaction. The referenced
// subcategory must be live and belong to a live category.
func (s *CuadroStore) Create(ctx context.Context, in model.CuadroInput) (int64, error) {
	in, err := normalizeCuadroInput(in)
	if err != nil {
		return 0, err
	}

	var id int64
	err = InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := requireLiveSubcategory(ctx, tx, in.SubcategoriaID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO cuadros (titulo, descripcion, subcategoria_id) VALUES (?, ?, ?)`,
			in.Titulo, in.Descripcion, in.SubcategoriaID)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return insertImages(ctx, tx, id, in.Imagenes)
	})
	if err != nil {
		return 0, translate("create cuadro", err, "La subcategoría indicada no es válida.")
	}
	return id, nil
}

// Update replaces a live cuadro's fields and its image list in one
// transaction. It returns the image URLs that are no longer referenced by
// the cuadro.
func (s *CuadroStore) Update(ctx context.Context, id int64, in model.CuadroInput) ([]string, error) {
	in, err := normalizeCuadroInput(in)
	if err != nil {
		return nil, err
	}

	var removed []string
	err = InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := requireLiveSubcategory(ctx, tx, in.SubcategoriaID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE cuadros SET titulo = ?, descripcion = ?, subcategoria_id = ?
			  WHERE id = ? AND is_deleted = 0`,
			in.Titulo, in.Descripcion, in.SubcategoriaID, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return apperr.NotFound("Cuadro no encontrado.")
		}

		var current []string
		if err := tx.SelectContext(ctx, &current,
			`SELECT imagen_url FROM cuadro_imagenes WHERE cuadro_id = ? ORDER BY orden, id`, id); err != nil {
			return err
		}
		keep := make(map[string]struct{}, len(in.Imagenes))
		for _, url := range in.Imagenes {
			keep[url] = struct{}{}
		}
		for _, url := range current {
			if _, ok := keep[url]; !ok {
				removed = append(removed, url)
			}
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM cuadro_imagenes WHERE cuadro_id = ?`, id); err != nil {
			return err
		}
		return insertImages(ctx, tx, id, in.Imagenes)
	})
	if err != nil {
		return nil, translate("update cuadro", err, "La subcategoría indicada no es válida.")
	}
	return removed, nil
}

// Delete soft-deletes a cuadro. It returns false when the cuadro is missing
// or already deleted.
func (s *CuadroStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE cuadros SET is_deleted = 1 WHERE id = ? AND is_deleted = 0`, id)
	if err != nil {
		return false, apperr.Persistence("delete cuadro", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Persistence("delete cuadro", err)
	}
	return n > 0, nil
}

// Get returns a live cuadro with its full ordered image list.
func (s *CuadroStore) Get(ctx context.Context, id int64) (*model.CuadroDetail, error) {
	var d model.CuadroDetail
	err := s.db.GetContext(ctx, &d.Cuadro, cuadroSelect+` WHERE c.id = ? AND c.is_deleted = 0`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Cuadro no encontrado.")
	}
	if err != nil {
		return nil, apperr.Persistence("get cuadro", err)
	}

	d.Imagenes = []model.CuadroImage{}
	if err := s.db.SelectContext(ctx, &d.Imagenes,
		`SELECT id, cuadro_id, imagen_url, orden
		   FROM cuadro_imagenes
		  WHERE cuadro_id = ?
		  ORDER BY orden, id`, id); err != nil {
		return nil, apperr.Persistence("list cuadro images", err)
	}
	return &d, nil
}

// List returns all live cuadros, newest first. A non-empty category name
// restricts the result to that category.
func (s *CuadroStore) List(ctx context.Context, categoria string) ([]model.Cuadro, error) {
	query := cuadroSelect + ` WHERE c.is_deleted = 0`
	var args []any
	if categoria != "" {
		query += ` AND cat.nombre = ?`
		args = append(args, categoria)
	}
	query += ` ORDER BY c.creado_en DESC, c.id DESC`

	cuadros := []model.Cuadro{}
	if err := s.db.SelectContext(ctx, &cuadros, query, args...); err != nil {
		return nil, apperr.Persistence("list cuadros", err)
	}
	return cuadros, nil
}

// Random returns up to n live cuadros in random order.
func (s *CuadroStore) Random(ctx context.Context, n int) ([]model.Cuadro, error) {
	cuadros := []model.Cuadro{}
	if err := s.db.SelectContext(ctx, &cuadros,
		cuadroSelect+` WHERE c.is_deleted = 0 ORDER BY RANDOM() LIMIT ?`, n); err != nil {
		return nil, apperr.Persistence("list random cuadros", err)
	}
	return cuadros, nil
}

// Count returns the number of live cuadros.
func (s *CuadroStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM cuadros WHERE is_deleted = 0`); err != nil {
		return 0, apperr.Persistence("count cuadros", err)
	}
	return n, nil
}

func requireLiveSubcategory(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var ok bool
	if err := tx.GetContext(ctx, &ok,
		`SELECT EXISTS (
		     SELECT 1 FROM subcategorias s
		       JOIN categorias c ON c.id = s.categoria_id
		      WHERE s.id = ? AND s.is_deleted = 0 AND c.is_deleted = 0
		 )`, id); err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("La subcategoría indicada no existe.",
			map[string]string{"subcategoria": "invalid"})
	}
	return nil
}

func insertImages(ctx context.Context, tx *sqlx.Tx, cuadroID int64, urls []string) error {
	for i, url := range urls {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cuadro_imagenes (cuadro_id, imagen_url, orden) VALUES (?, ?, ?)`,
			cuadroID, url, i); err != nil {
			return err
		}
	}
	return nil
}
