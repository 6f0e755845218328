// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the cuadros project.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary migrated database that is closed when the test
// ends.
func TestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := store.NewDB(filepath.Join(t.TempDir(), "cuadros-test.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// CreateCategory inserts a category with the given subcategories and
// returns its id.
func CreateCategory(t *testing.T, db *sqlx.DB, nombre string, subs ...string) int64 {
	t.Helper()
	id, err := store.NewCategoryStore(db, model.NamesCaseSensitive).Create(context.Background(),
		model.CategoryInput{Nombre: nombre, Subcategorias: subs})
	if err != nil {
		t.Fatalf("create category %q: %v", nombre, err)
	}
	return id
}

// SubcategoryID returns the id of a live subcategory by name.
func SubcategoryID(t *testing.T, db *sqlx.DB, categoryID int64, nombre string) int64 {
	t.Helper()
	var id int64
	if err := db.Get(&id,
		`SELECT id FROM subcategorias WHERE categoria_id = ? AND nombre = ? AND is_deleted = 0`,
		categoryID, nombre); err != nil {
		t.Fatalf("subcategory %q: %v", nombre, err)
	}
	return id
}

// CreateCuadro inserts a cuadro in a subcategory and returns its id.
func CreateCuadro(t *testing.T, db *sqlx.DB, titulo string, subcategoryID int64, images ...string) int64 {
	t.Helper()
	id, err := store.NewCuadroStore(db).Create(context.Background(), model.CuadroInput{
		Titulo:         titulo,
		SubcategoriaID: subcategoryID,
		Imagenes:       images,
	})
	if err != nil {
		t.Fatalf("create cuadro %q: %v", titulo, err)
	}
	return id
}

// CreateUser inserts a user with a precomputed hash and returns its id.
func CreateUser(t *testing.T, db *sqlx.DB, nombre, hash string, rol model.Role) int64 {
	t.Helper()
	id, err := store.NewUserStore(db).Create(context.Background(), model.UserInput{
		Nombre:   nombre,
		Password: hash,
		Rol:      rol,
		Estado:   model.UserActive,
		Avatar:   model.DefaultAvatar,
	})
	if err != nil {
		t.Fatalf("create user %q: %v", nombre, err)
	}
	return id
}
