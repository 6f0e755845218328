// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
)

// newValidator returns a validator reporting fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates req and converts failures to a validation error whose
// details map each field to the failed rule.
func (h *Handler) check(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Datos inválidos.", nil)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fieldName(fe)]; !seen {
			fields[fieldName(fe)] = fe.Tag()
		}
	}
	return apperr.Validation(describe(verrs[0]), fields)
}

// fieldName returns the reported name of a failed field; slice elements are
// reported under their slice, e.g. "subcategorias".
func fieldName(fe validator.FieldError) string {
	name, _, _ := strings.Cut(fe.Field(), "[")
	return name
}

// describe renders one failure as a Spanish sentence.
func describe(fe validator.FieldError) string {
	field := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio.", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			if fe.Param() == "1" {
				return fmt.Sprintf("El campo %s debe tener al menos un elemento.", field)
			}
			return fmt.Sprintf("El campo %s debe tener al menos %s elementos.", field, fe.Param())
		}
		return fmt.Sprintf("El campo %s debe tener al menos %s caracteres.", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("El campo %s admite como máximo %s elementos.", field, fe.Param())
		}
		return fmt.Sprintf("El campo %s admite como máximo %s caracteres.", field, fe.Param())
	case "hexcolor":
		return fmt.Sprintf("El campo %s debe ser un color hexadecimal.", field)
	case "oneof":
		return fmt.Sprintf("El campo %s debe ser uno de: %s.", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("El campo %s debe ser un identificador válido.", field)
	default:
		return fmt.Sprintf("El campo %s no es válido.", field)
	}
}
