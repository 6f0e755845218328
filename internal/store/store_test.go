// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

// testDB creates a temporary migrated database.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "store-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func liveSubcategories(t *testing.T, db *sqlx.DB, categoryID int64) map[string]int64 {
	t.Helper()
	subs, err := NewCategoryStore(db, model.NamesCaseSensitive).Subcategories(context.Background(), categoryID)
	require.NoError(t, err)
	out := make(map[string]int64, len(subs))
	for _, s := range subs {
		out[s.Nombre] = s.ID
	}
	return out
}

func newCategory(t *testing.T, cs *CategoryStore, nombre string, subs ...string) int64 {
	t.Helper()
	id, err := cs.Create(context.Background(), model.CategoryInput{Nombre: nombre, Subcategorias: subs})
	require.NoError(t, err)
	return id
}

func newCuadro(t *testing.T, db *sqlx.DB, titulo, descripcion string, subID int64, images ...string) int64 {
	t.Helper()
	id, err := NewCuadroStore(db).Create(context.Background(), model.CuadroInput{
		Titulo:         titulo,
		Descripcion:    descripcion,
		SubcategoriaID: subID,
		Imagenes:       images,
	})
	require.NoError(t, err)
	return id
}

func TestCategoryCreate(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	id, err := cs.Create(ctx, model.CategoryInput{
		Nombre:        "  Anime ",
		Subcategorias: []string{"Naruto", " One Piece "},
		Color:         "#ff0000",
	})
	require.NoError(t, err)

	c, err := cs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Anime", c.Nombre)
	assert.Equal(t, "#ff0000", c.Color)
	assert.Empty(t, c.Imagen)
	assert.False(t, c.IsFeatured)

	subs, err := cs.Subcategories(ctx, id)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Naruto", subs[0].Nombre)
	assert.Equal(t, "One Piece", subs[1].Nombre)
}

func TestCategoryCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		in   model.CategoryInput
	}{
		{"empty name", model.CategoryInput{Nombre: " ", Subcategorias: []string{"a"}}},
		{"no subcategories", model.CategoryInput{Nombre: "Anime"}},
		{"blank subcategory", model.CategoryInput{Nombre: "Anime", Subcategorias: []string{"a", " "}}},
		{"duplicate subcategory", model.CategoryInput{Nombre: "Anime", Subcategorias: []string{"a", "a"}}},
	}

	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cs.Create(context.Background(), tt.in)
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}

	n, err := cs.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "no category row may be written")
}

func TestCategoryCreateDuplicateName(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	newCategory(t, cs, "Anime", "Naruto")

	_, err := cs.Create(context.Background(), model.CategoryInput{Nombre: "Anime", Subcategorias: []string{"Bleach"}})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	var subs int
	require.NoError(t, db.Get(&subs, `SELECT COUNT(*) FROM subcategorias`))
	assert.Equal(t, 1, subs, "failed create must not leave subcategories behind")
}

func TestCategoryNamePolicy(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	sensitive := NewCategoryStore(db, model.NamesCaseSensitive)
	_, err := sensitive.Create(ctx, model.CategoryInput{Nombre: "A", Subcategorias: []string{"Foo", "foo"}})
	require.NoError(t, err)

	insensitive := NewCategoryStore(db, model.NamesCaseInsensitive)
	_, err = insensitive.Create(ctx, model.CategoryInput{Nombre: "B", Subcategorias: []string{"Foo", "foo"}})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCategoryUpdateReconciles(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	id := newCategory(t, cs, "Anime", "Naruto", "Bleach", "Dragon Ball")
	before := liveSubcategories(t, db, id)
	newCuadro(t, db, "Kakashi", "", before["Naruto"])

	err := cs.Update(ctx, id, model.CategoryInput{
		Nombre:        "Manga",
		Subcategorias: []string{"Naruto", "Dragon Ball", "One Piece"},
	})
	require.NoError(t, err)

	after := liveSubcategories(t, db, id)
	assert.Len(t, after, 3)
	assert.Equal(t, before["Naruto"], after["Naruto"], "kept names keep their ids")
	assert.Equal(t, before["Dragon Ball"], after["Dragon Ball"])
	assert.NotContains(t, after, "Bleach")
	assert.Contains(t, after, "One Piece")

	var deleted int
	require.NoError(t, db.Get(&deleted, `SELECT is_deleted FROM subcategorias WHERE id = ?`, before["Bleach"]))
	assert.Equal(t, 1, deleted, "removed subcategory is soft-deleted")

	c, err := cs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Manga", c.Nombre)
}

func TestCategoryUpdateInUseRollsBack(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	id := newCategory(t, cs, "Anime", "Naruto", "Bleach")
	before := liveSubcategories(t, db, id)
	newCuadro(t, db, "Ichigo", "", before["Bleach"])

	err := cs.Update(ctx, id, model.CategoryInput{
		Nombre:        "Renamed",
		Subcategorias: []string{"Naruto", "One Piece"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Contains(t, apperr.PublicMessage(err), "Bleach")

	assert.Equal(t, before, liveSubcategories(t, db, id), "subcategory set unchanged")
	c, err := cs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Anime", c.Nombre, "name change rolled back")
}

func TestCategoryUpdateKeepsImageWhenEmpty(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	id, err := cs.Create(ctx, model.CategoryInput{
		Nombre: "Anime", Subcategorias: []string{"a"}, Imagen: "/uploads/categorias/1-anime.jpg",
	})
	require.NoError(t, err)

	require.NoError(t, cs.Update(ctx, id, model.CategoryInput{Nombre: "Anime", Subcategorias: []string{"a"}}))
	c, err := cs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/categorias/1-anime.jpg", c.Imagen)
}

func TestCategoryUpdateMissing(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)

	err := cs.Update(context.Background(), 999, model.CategoryInput{Nombre: "x", Subcategorias: []string{"y"}})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCategoryDelete(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	t.Run("in use", func(t *testing.T) {
		id := newCategory(t, cs, "Anime", "Naruto")
		cuadroID := newCuadro(t, db, "Kakashi", "", liveSubcategories(t, db, id)["Naruto"])

		ok, err := cs.Delete(ctx, id)
		assert.False(t, ok)
		assert.True(t, errors.Is(err, apperr.ErrConflict))
		_, err = cs.Get(ctx, id)
		require.NoError(t, err, "category still live")

		// Once the cuadro is gone the category can be deleted.
		_, err = NewCuadroStore(db).Delete(ctx, cuadroID)
		require.NoError(t, err)
		ok, err = cs.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("cascades to subcategories", func(t *testing.T) {
		id := newCategory(t, cs, "Paisajes", "Mar", "Montaña")
		require.NoError(t, cs.SetFeatured(ctx, []int64{id}))

		ok, err := cs.Delete(ctx, id)
		require.NoError(t, err)
		assert.True(t, ok)

		assert.Empty(t, liveSubcategories(t, db, id))
		_, err = cs.Get(ctx, id)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))

		featured, err := cs.Featured(ctx)
		require.NoError(t, err)
		assert.Empty(t, featured, "deleted category leaves the featured set")
	})

	t.Run("missing", func(t *testing.T) {
		ok, err := cs.Delete(ctx, 12345)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCategoryTable(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	a := newCategory(t, cs, "Anime", "Naruto", "Bleach")
	newCategory(t, cs, "Paisajes", "Mar")
	require.NoError(t, cs.Update(ctx, a, model.CategoryInput{Nombre: "Anime", Subcategorias: []string{"Naruto"}}))

	rows, err := cs.Table(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Paisajes", rows[0].Nombre, "newest first")
	assert.Equal(t, []string{"Mar"}, rows[0].Subcategorias)
	assert.Equal(t, []string{"Naruto"}, rows[1].Subcategorias)
}

func TestSetFeatured(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		ids = append(ids, newCategory(t, cs, name, "x"))
	}

	featuredIDs := func() []int64 {
		cats, err := cs.Featured(ctx)
		require.NoError(t, err)
		var out []int64
		for _, c := range cats {
			out = append(out, c.ID)
		}
		return out
	}

	require.NoError(t, cs.SetFeatured(ctx, ids[:3]))
	assert.Equal(t, ids[:3], featuredIDs())

	err := cs.SetFeatured(ctx, ids)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, ids[:3], featuredIDs(), "rejected request leaves the set unchanged")

	err = cs.SetFeatured(ctx, []int64{ids[0], 9999})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.Equal(t, ids[:3], featuredIDs())

	require.NoError(t, cs.SetFeatured(ctx, []int64{ids[4], ids[4], ids[3]}))
	assert.Equal(t, []int64{ids[3], ids[4]}, featuredIDs(), "duplicates collapse")

	require.NoError(t, cs.SetFeatured(ctx, nil))
	assert.Empty(t, featuredIDs())
}

func TestCuadroCreateAndGet(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	qs := NewCuadroStore(db)
	ctx := context.Background()

	catID := newCategory(t, cs, "Anime", "Naruto")
	subID := liveSubcategories(t, db, catID)["Naruto"]

	id := newCuadro(t, db, "Kakashi", "Sensei", subID, "/uploads/cuadros/b.jpg", "/uploads/cuadros/a.jpg")
	d, err := qs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kakashi", d.Titulo)
	assert.Equal(t, "Naruto", d.Subcategoria)
	assert.Equal(t, "Anime", d.Categoria)
	assert.Equal(t, catID, d.CategoriaID)
	assert.Equal(t, "/uploads/cuadros/b.jpg", d.Imagen, "representative image is the first one")
	require.Len(t, d.Imagenes, 2)
	assert.Equal(t, 0, d.Imagenes[0].Orden)
	assert.Equal(t, "/uploads/cuadros/a.jpg", d.Imagenes[1].URL)

	_, err = qs.Get(ctx, 999)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCuadroCreateRejectsDeadSubcategory(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	qs := NewCuadroStore(db)
	ctx := context.Background()

	catID := newCategory(t, cs, "Anime", "Naruto", "Bleach")
	bleach := liveSubcategories(t, db, catID)["Bleach"]
	require.NoError(t, cs.Update(ctx, catID, model.CategoryInput{Nombre: "Anime", Subcategorias: []string{"Naruto"}}))

	tests := []struct {
		name  string
		subID int64
	}{
		{"soft-deleted", bleach},
		{"missing", 4242},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := qs.Create(ctx, model.CuadroInput{Titulo: "x", SubcategoriaID: tt.subID})
			assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
		})
	}

	_, err := qs.Create(ctx, model.CuadroInput{Titulo: " ", SubcategoriaID: bleach})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCuadroUpdateReplacesImages(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	qs := NewCuadroStore(db)
	ctx := context.Background()

	catID := newCategory(t, cs, "Anime", "Naruto", "Bleach")
	subs := liveSubcategories(t, db, catID)
	id := newCuadro(t, db, "Kakashi", "", subs["Naruto"], "/u/1.jpg", "/u/2.jpg", "/u/3.jpg")

	removed, err := qs.Update(ctx, id, model.CuadroInput{
		Titulo:         "Kakashi Hatake",
		SubcategoriaID: subs["Bleach"],
		Imagenes:       []string{"/u/3.jpg", "/u/1.jpg", "/u/4.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/u/2.jpg"}, removed)

	d, err := qs.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kakashi Hatake", d.Titulo)
	assert.Equal(t, "Bleach", d.Subcategoria)
	var urls []string
	for _, img := range d.Imagenes {
		urls = append(urls, img.URL)
	}
	assert.Equal(t, []string{"/u/3.jpg", "/u/1.jpg", "/u/4.jpg"}, urls)

	_, err = qs.Update(ctx, 999, model.CuadroInput{Titulo: "x", SubcategoriaID: subs["Naruto"]})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCuadroDelete(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	qs := NewCuadroStore(db)
	ctx := context.Background()

	catID := newCategory(t, cs, "Anime", "Naruto")
	id := newCuadro(t, db, "Kakashi", "", liveSubcategories(t, db, catID)["Naruto"])

	ok, err := qs.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = qs.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok, "second delete is a no-op")

	_, err = qs.Get(ctx, id)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCatalogPaging(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	qs := NewCuadroStore(db)
	ctx := context.Background()

	catID := newCategory(t, cs, "Anime", "Naruto")
	subID := liveSubcategories(t, db, catID)["Naruto"]
	var ids []int64
	for _, title := range []string{"uno", "dos", "tres", "cuatro", "cinco"} {
		ids = append(ids, newCuadro(t, db, title, "", subID))
	}
	_, err := qs.Delete(ctx, ids[0])
	require.NoError(t, err)

	page, err := qs.Catalog(ctx, model.CatalogQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[4], page.Items[0].ID, "newest first")
	assert.Equal(t, ids[3], page.Items[1].ID)

	page, err = qs.Catalog(ctx, model.CatalogQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[1], page.Items[1].ID, "deleted cuadros never appear")

	page, err = qs.Catalog(ctx, model.CatalogQuery{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 9, page.CurrentPage)

	page, err = qs.Catalog(ctx, model.CatalogQuery{Page: math.MaxInt, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Items, "a huge page never wraps back to the first rows")
	assert.Equal(t, 4, page.Total)
}

func TestCatalogFilters(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	qs := NewCuadroStore(db)
	ctx := context.Background()

	anime := newCategory(t, cs, "Anime", "Naruto", "Bleach")
	paisajes := newCategory(t, cs, "Paisajes", "Mar")
	as := liveSubcategories(t, db, anime)
	ps := liveSubcategories(t, db, paisajes)

	newCuadro(t, db, "Kakashi", "ninja copia", as["Naruto"])
	newCuadro(t, db, "Ichigo", "shinigami 100% sustituto", as["Bleach"])
	newCuadro(t, db, "Atardecer", "mar en calma", ps["Mar"])
	newCuadro(t, db, "Ola_grande", "", ps["Mar"])
	newCuadro(t, db, "Retrato", "óleo sobre lienzo", ps["Mar"])

	tests := []struct {
		name   string
		filter model.CatalogFilter
		want   []string
	}{
		{"no filter", model.CatalogFilter{}, []string{"Retrato", "Ola_grande", "Atardecer", "Ichigo", "Kakashi"}},
		{"category", model.CatalogFilter{Categoria: "Anime"}, []string{"Ichigo", "Kakashi"}},
		{"subcategory", model.CatalogFilter{Subcategoria: "Bleach"}, []string{"Ichigo"}},
		{"search title", model.CatalogFilter{Search: "kaka"}, []string{"Kakashi"}},
		{"search description", model.CatalogFilter{Search: "calma"}, []string{"Atardecer"}},
		{"percent is literal", model.CatalogFilter{Search: "100%"}, []string{"Ichigo"}},
		{"underscore is literal", model.CatalogFilter{Search: "a_g"}, []string{"Ola_grande"}},
		{"lone percent", model.CatalogFilter{Search: "%"}, []string{"Ichigo"}},
		{"combined", model.CatalogFilter{Categoria: "Paisajes", Search: "mar"}, []string{"Atardecer"}},
		{"search folds ascii case", model.CatalogFilter{Search: "SOBRE"}, []string{"Retrato"}},
		{"accented letters keep their case", model.CatalogFilter{Search: "ÓLEO"}, nil},
		{"accented exact case", model.CatalogFilter{Search: "óleo"}, []string{"Retrato"}},
		{"unknown category", model.CatalogFilter{Categoria: "Nada"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := qs.Catalog(ctx, model.CatalogQuery{Page: 1, PageSize: 50, Filter: tt.filter})
			require.NoError(t, err)
			var got []string
			for _, c := range page.Items {
				got = append(got, c.Titulo)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), page.Total)
			assert.Equal(t, tt.filter, page.Filter)
		})
	}
}

func TestBuildCatalogWhere(t *testing.T) {
	where, args := buildCatalogWhere(model.CatalogFilter{})
	assert.Equal(t, " WHERE c.is_deleted = 0", where)
	assert.Empty(t, args)

	where, args = buildCatalogWhere(model.CatalogFilter{Categoria: "A", Search: `50%_\`})
	assert.Contains(t, where, "cat.nombre = ?")
	assert.Contains(t, where, "ESCAPE")
	assert.Equal(t, []any{"A", `%50\%\_\\%`, `%50\%\_\\%`}, args)
}

func TestUserStore(t *testing.T) {
	db := testDB(t)
	us := NewUserStore(db)
	ctx := context.Background()

	id, err := us.Create(ctx, model.UserInput{
		Nombre: "ana", Password: "hash-1", Rol: model.RoleEditor, Estado: model.UserActive,
	})
	require.NoError(t, err)

	_, err = us.Create(ctx, model.UserInput{
		Nombre: "ana", Password: "hash-2", Rol: model.RoleViewer, Estado: model.UserActive,
	})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "duplicate name, got %v", err)

	u, err := us.GetByName(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "hash-1", u.PasswordHash)
	assert.Empty(t, u.Avatar)
	assert.False(t, u.CreadoEn.IsZero())

	require.NoError(t, us.Update(ctx, id, model.UserInput{
		Nombre: "ana", Rol: model.RoleAdmin, Estado: model.UserInactive, Avatar: "/uploads/avatars/a.png",
	}))
	u, err = us.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", u.PasswordHash, "empty password keeps the hash")
	assert.Equal(t, model.RoleAdmin, u.Rol)
	assert.Equal(t, model.UserInactive, u.Estado)
	assert.Equal(t, "/uploads/avatars/a.png", u.Avatar)

	require.NoError(t, us.UpdatePasswordHash(ctx, id, "hash-3"))
	u, err = us.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hash-3", u.PasswordHash)

	err = us.Update(ctx, 999, model.UserInput{Nombre: "x", Rol: model.RoleViewer, Estado: model.UserActive})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	ok, err := us.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = us.GetByName(ctx, "ana")
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "deleted users cannot be found")

	users, err := us.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestSeed(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	hash := func(p string) (string, error) { return "hashed:" + p, nil }

	require.NoError(t, Seed(ctx, db, hash, ""))
	u, err := NewUserStore(db).GetByName(ctx, DefaultAdminName)
	require.NoError(t, err)
	assert.Equal(t, "hashed:"+DefaultAdminPassword, u.PasswordHash)
	assert.Equal(t, model.RoleAdmin, u.Rol)

	// A second run is a no-op even after the admin is soft-deleted.
	_, err = NewUserStore(db).Delete(ctx, u.ID)
	require.NoError(t, err)
	require.NoError(t, Seed(ctx, db, hash, "other"))
	n, err := NewUserStore(db).CountAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCountsAndReferencedUploads(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db, model.NamesCaseSensitive)
	ctx := context.Background()

	catID, err := cs.Create(ctx, model.CategoryInput{
		Nombre: "Anime", Subcategorias: []string{"Naruto"}, Imagen: "/uploads/categorias/c.jpg",
	})
	require.NoError(t, err)
	newCuadro(t, db, "Kakashi", "", liveSubcategories(t, db, catID)["Naruto"], "/uploads/cuadros/k.jpg")
	_, err = NewUserStore(db).Create(ctx, model.UserInput{
		Nombre: "ana", Password: "h", Rol: model.RoleViewer, Estado: model.UserActive, Avatar: "/uploads/avatars/a.png",
	})
	require.NoError(t, err)

	counts, err := Counts(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, model.DashboardCounts{Cuadros: 1, Categorias: 1, Usuarios: 1}, counts)

	refs, err := ReferencedUploads(ctx, db)
	require.NoError(t, err)
	assert.Len(t, refs, 3)
	assert.Contains(t, refs, "/uploads/cuadros/k.jpg")
	assert.Contains(t, refs, "/uploads/categorias/c.jpg")
	assert.Contains(t, refs, "/uploads/avatars/a.png")
}
