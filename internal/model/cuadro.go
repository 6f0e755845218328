// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Cuadro is an art piece listed in the catalog. Imagen holds the
// representative image (lowest orden) or is empty when there is none.
type Cuadro struct {
	ID             int64     `db:"id" json:"id"`
	Titulo         string    `db:"titulo" json:"titulo"`
	Descripcion    string    `db:"descripcion" json:"descripcion"`
	SubcategoriaID int64     `db:"subcategoria_id" json:"subcategoria_id"`
	Subcategoria   string    `db:"subcategoria" json:"subcategoria"`
	CategoriaID    int64     `db:"categoria_id" json:"categoria_id"`
	Categoria      string    `db:"categoria" json:"categoria"`
	Imagen         string    `db:"imagen" json:"imagen,omitempty"`
	CreadoEn       time.Time `db:"creado_en" json:"creado_en"`
}

// CuadroImage is one entry of a cuadro's ordered image list.
type CuadroImage struct {
	ID       int64  `db:"id" json:"id"`
	CuadroID int64  `db:"cuadro_id" json:"-"`
	URL      string `db:"imagen_url" json:"url"`
	Orden    int    `db:"orden" json:"orden"`
}

// CuadroDetail is a cuadro with its complete image list.
type CuadroDetail struct {
	Cuadro
	Imagenes []CuadroImage `json:"imagenes"`
}

// CuadroInput is the validated payload for creating or updating a cuadro.
// Imagenes is the complete desired image list in display order.
type CuadroInput struct {
	Titulo         string
	Descripcion    string
	SubcategoriaID int64
	Imagenes       []string
}

// Catalog paging defaults.
const (
	DefaultCatalogPageSize = 12
	MaxCatalogPageSize     = 100
)

// CatalogFilter narrows a catalog listing. Empty fields do not filter.
type CatalogFilter struct {
	Categoria    string `json:"categoria,omitempty"`
	Subcategoria string `json:"subcategoria,omitempty"`
	Search       string `json:"search,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f CatalogFilter) IsEmpty() bool {
	return f.Categoria == "" && f.Subcategoria == "" && f.Search == ""
}

// CatalogQuery is a normalized catalog request.
type CatalogQuery struct {
	Page     int
	PageSize int
	Filter   CatalogFilter
}

// Normalize coerces Page and PageSize into their valid ranges.
func (q *CatalogQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultCatalogPageSize
	}
	if q.PageSize > MaxCatalogPageSize {
		q.PageSize = MaxCatalogPageSize
	}
	q.Page = min(q.Page, maxPageFor(q.PageSize))
}

// maxPageFor is the largest page whose offset fits in an int.
func maxPageFor(pageSize int) int {
	return math.MaxInt/pageSize + 1
}

// Offset returns the row offset of the first item of the page.
func (q CatalogQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// ParseCatalogQuery builds a CatalogQuery from raw query-string values.
// A missing or non-numeric page becomes 1; a missing or non-numeric limit
// becomes defaultSize; numeric values below 1 are raised to 1.
func ParseCatalogQuery(page, limit string, defaultSize int, filter CatalogFilter) CatalogQuery {
	if defaultSize < 1 {
		defaultSize = DefaultCatalogPageSize
	}
	q := CatalogQuery{
		Page:     parseLeadingInt(page, 1),
		PageSize: parseLeadingInt(limit, defaultSize),
		Filter: CatalogFilter{
			Categoria:    strings.TrimSpace(filter.Categoria),
			Subcategoria: strings.TrimSpace(filter.Subcategoria),
			Search:       strings.TrimSpace(filter.Search),
		},
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 1
	}
	if q.PageSize > MaxCatalogPageSize {
		q.PageSize = MaxCatalogPageSize
	}
	q.Page = min(q.Page, maxPageFor(q.PageSize))
	return q
}

// parseLeadingInt parses the leading decimal digits of s ("3abc" is 3),
// returning def when s has none.
func parseLeadingInt(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return def
	}
	// Out-of-range values saturate at the int bounds.
	n, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return def
	}
	return n
}

// CatalogPage is one page of catalog results with its paging metadata.
type CatalogPage struct {
	Items       []Cuadro      `json:"cuadros"`
	Total       int           `json:"total"`
	TotalPages  int           `json:"totalPages"`
	CurrentPage int           `json:"currentPage"`
	PageSize    int           `json:"pageSize"`
	Filter      CatalogFilter `json:"filtros"`
}

// TotalPagesFor returns ceil(total/pageSize), never less than 1.
func TotalPagesFor(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// DashboardCounts are the live row counts shown on the admin dashboard.
type DashboardCounts struct {
	Cuadros    int `db:"cuadros" json:"totalCuadros"`
	Categorias int `db:"categorias" json:"totalCategorias"`
	Usuarios   int `db:"usuarios" json:"totalUsuarios"`
}
