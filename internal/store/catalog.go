// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern returns a LIKE pattern matching s as a literal substring.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// buildCatalogWhere returns the WHERE clause and its arguments for a
// catalog filter. Only live cuadros are ever matched.
func buildCatalogWhere(f model.CatalogFilter) (string, []any) {
	conditions := []string{"c.is_deleted = 0"}
	var args []any

	if f.Categoria != "" {
		conditions = append(conditions, "cat.nombre = ?")
		args = append(args, f.Categoria)
	}
	if f.Subcategoria != "" {
		conditions = append(conditions, "s.nombre = ?")
		args = append(args, f.Subcategoria)
	}
	if f.Search != "" {
		conditions = append(conditions, `(c.titulo LIKE ? ESCAPE '\' OR c.descripcion LIKE ? ESCAPE '\')`)
		p := likePattern(f.Search)
		args = append(args, p, p)
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Catalog returns one filtered page of live cuadros, newest first, together
// with the total match count.
func (s *CuadroStore) Catalog(ctx context.Context, q model.CatalogQuery) (*model.CatalogPage, error) {
	q.Normalize()
	where, args := buildCatalogWhere(q.Filter)

	var total int
	countQuery := `
		SELECT COUNT(*)
		  FROM cuadros c
		  JOIN subcategorias s ON c.subcategoria_id = s.id
		  JOIN categorias cat ON s.categoria_id = cat.id` + where
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, apperr.Persistence("count catalog", err)
	}

	items := []model.Cuadro{}
	pageQuery := cuadroSelect + where + ` ORDER BY c.creado_en DESC, c.id DESC LIMIT ? OFFSET ?`
	pageArgs := append(append([]any{}, args...), q.PageSize, q.Offset())
	if err := s.db.SelectContext(ctx, &items, pageQuery, pageArgs...); err != nil {
		return nil, apperr.Persistence("list catalog", err)
	}

	return &model.CatalogPage{
		Items:       items,
		Total:       total,
		TotalPages:  model.TotalPagesFor(total, q.PageSize),
		CurrentPage: q.Page,
		PageSize:    q.PageSize,
		Filter:      q.Filter,
	}, nil
}
