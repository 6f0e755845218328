// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"fmt"

	"golang.org/x/text/cases"
)

// MaxFeaturedCategories is the size limit of the featured set.
const MaxFeaturedCategories = 4

// Category groups subcategories and carries presentation attributes.
type Category struct {
	ID         int64  `db:"id" json:"id"`
	Nombre     string `db:"nombre" json:"nombre"`
	Color      string `db:"color" json:"color,omitempty"`
	Imagen     string `db:"imagen" json:"imagen,omitempty"`
	IsFeatured bool   `db:"is_featured" json:"is_featured"`
	Status     Status `db:"is_deleted" json:"-"`
}

// Subcategory belongs to exactly one category and is referenced by cuadros.
type Subcategory struct {
	ID          int64  `db:"id" json:"id"`
	Nombre      string `db:"nombre" json:"nombre"`
	CategoriaID int64  `db:"categoria_id" json:"categoria_id"`
	Status      Status `db:"is_deleted" json:"-"`
}

// CategoryRow is a category with the names of its live subcategories, as
// shown in the admin table.
type CategoryRow struct {
	Category
	Subcategorias []string `json:"subcategorias"`
}

// CategoryInput is the desired state of a category and its subcategory set.
// An empty Imagen on update keeps the stored image.
type CategoryInput struct {
	Nombre        string
	Subcategorias []string
	Color         string
	Imagen        string
}

// NamePolicy decides when two subcategory names are the same name.
type NamePolicy int

// Name comparison policies.
const (
	// NamesCaseSensitive compares names exactly as stored: "Foo" and "foo"
	// are distinct subcategories.
	NamesCaseSensitive NamePolicy = iota
	// NamesCaseInsensitive compares names under Unicode case folding.
	NamesCaseInsensitive
)

// Key returns the comparison key of name under the policy.
func (p NamePolicy) Key(name string) string {
	if p == NamesCaseInsensitive {
		return cases.Fold().String(name)
	}
	return name
}

func (p NamePolicy) String() string {
	if p == NamesCaseInsensitive {
		return "case-insensitive"
	}
	return "case-sensitive"
}

// ParseNamePolicy parses the configuration value of a NamePolicy.
func ParseNamePolicy(s string) (NamePolicy, error) {
	switch s {
	case "", "case-sensitive":
		return NamesCaseSensitive, nil
	case "case-insensitive":
		return NamesCaseInsensitive, nil
	default:
		return NamesCaseSensitive, fmt.Errorf("unknown subcategory name policy %q", s)
	}
}
