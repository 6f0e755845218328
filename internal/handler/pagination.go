// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/galeria-cuadros/cuadros/internal/model"
)

// Pagination holds the page links of a catalog listing.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevURL     string
	NextURL     string
	Pages       []PaginationPage
}

// PaginationPage is one link of the page bar; ellipsis entries have no URL.
type PaginationPage struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// catalogQueryString encodes the filter and page size of a catalog listing,
// leaving out defaults.
func catalogQueryString(f model.CatalogFilter, pageSize, defaultSize int) url.Values {
	q := url.Values{}
	if f.Categoria != "" {
		q.Set("categoria", f.Categoria)
	}
	if f.Subcategoria != "" {
		q.Set("subcategoria", f.Subcategoria)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if pageSize != defaultSize {
		q.Set("limit", strconv.Itoa(pageSize))
	}
	return q
}

// CatalogPageURL returns the catalog URL of page under filter f.
func CatalogPageURL(f model.CatalogFilter, page, pageSize, defaultSize int) string {
	q := catalogQueryString(f, pageSize, defaultSize)
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return RouteCatalogo
	}
	return RouteCatalogo + "?" + q.Encode()
}

// BuildPagination creates the page bar for a catalog page: at most five
// numbered links around the current page, plus the first and last pages
// separated by ellipses.
func BuildPagination(p *model.CatalogPage, defaultSize int) Pagination {
	current, total := p.CurrentPage, p.TotalPages
	link := func(n int) string {
		return CatalogPageURL(p.Filter, n, p.PageSize, defaultSize)
	}

	pg := Pagination{
		CurrentPage: current,
		TotalPages:  total,
		TotalItems:  p.Total,
		PerPage:     p.PageSize,
		HasPrev:     current > 1,
		HasNext:     current < total,
	}
	if pg.HasPrev {
		pg.PrevURL = link(min(current-1, total))
	}
	if pg.HasNext {
		pg.NextURL = link(current + 1)
	}

	start := current - 2
	end := current + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > total {
		end = total
		start = max(end-4, 1)
	}

	if start > 1 {
		pg.Pages = append(pg.Pages, PaginationPage{Number: 1, URL: link(1)})
		if start > 2 {
			pg.Pages = append(pg.Pages, PaginationPage{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		pg.Pages = append(pg.Pages, PaginationPage{Number: i, URL: link(i), IsCurrent: i == current})
	}
	if end < total {
		if end < total-1 {
			pg.Pages = append(pg.Pages, PaginationPage{IsEllipsis: true})
		}
		pg.Pages = append(pg.Pages, PaginationPage{Number: total, URL: link(total)})
	}
	return pg
}

// ShouldShow reports whether there is more than one page.
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// PageRange describes the items shown, e.g. "13-24".
func (p Pagination) PageRange() string {
	if p.TotalItems == 0 {
		return "0"
	}
	start := (p.CurrentPage-1)*p.PerPage + 1
	end := min(p.CurrentPage*p.PerPage, p.TotalItems)
	if start > end {
		return "0"
	}
	return fmt.Sprintf("%d-%d", start, end)
}
