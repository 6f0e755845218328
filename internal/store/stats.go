// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

// Counts returns the live cuadro, category and user counts in one query.
func Counts(ctx context.Context, db *sqlx.DB) (model.DashboardCounts, error) {
	var c model.DashboardCounts
	err := db.GetContext(ctx, &c, `
		SELECT
			(SELECT COUNT(*) FROM cuadros WHERE is_deleted = 0)    AS cuadros,
			(SELECT COUNT(*) FROM categorias WHERE is_deleted = 0) AS categorias,
			(SELECT COUNT(*) FROM usuarios WHERE is_deleted = 0)   AS usuarios`)
	if err != nil {
		return c, apperr.Persistence("dashboard counts", err)
	}
	return c, nil
}

// ReferencedUploads returns every upload URL still referenced by a row:
// cuadro images, category images and user avatars. Soft-deleted rows keep
// their references.
func ReferencedUploads(ctx context.Context, db *sqlx.DB) (map[string]struct{}, error) {
	var urls []string
	err := db.SelectContext(ctx, &urls, `
		SELECT imagen_url FROM cuadro_imagenes
		UNION
		SELECT imagen FROM categorias WHERE imagen IS NOT NULL AND imagen <> ''
		UNION
		SELECT avatar FROM usuarios WHERE avatar IS NOT NULL AND avatar <> ''`)
	if err != nil {
		return nil, apperr.Persistence("list referenced uploads", err)
	}
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}
