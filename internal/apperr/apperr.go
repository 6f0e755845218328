// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apperr defines the application error taxonomy shared by the store,
// service and handler layers, and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

// Error kinds.
const (
	KindPersistence Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
)

// String returns the machine-readable code used in JSON error bodies.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal_error"
	}
}

// HTTPStatus returns the HTTP status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error carrying a kind, a user-facing message and
// optional per-field details.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	case e.Message != "":
		return e.Message
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind, so that
// errors.Is(err, apperr.ErrNotFound) matches any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrValidation  = &Error{Kind: KindValidation}
	ErrNotFound    = &Error{Kind: KindNotFound}
	ErrConflict    = &Error{Kind: KindConflict}
	ErrAuth        = &Error{Kind: KindAuth}
	ErrForbidden   = &Error{Kind: KindForbidden}
	ErrPersistence = &Error{Kind: KindPersistence}
)

// Validation returns a validation error with optional field details.
func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound returns a not-found error with the given message.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict returns a conflict error with the given message.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthorized returns an authentication error with the given message.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// Forbidden returns an authorization error with the given message.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Persistence wraps an unexpected storage failure.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: op, Err: err}
}

// KindOf returns the kind of err. Errors outside the taxonomy are
// reported as KindPersistence.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPersistence
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	return KindOf(err).HTTPStatus()
}

// PublicMessage returns the message that may be shown to a client. Persistence
// failures never leak their cause.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindPersistence || e.Message == "" {
		return "Error interno del servidor."
	}
	return e.Message
}

// FieldsOf returns the field details attached to err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}
