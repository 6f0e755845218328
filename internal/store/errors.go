// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/galeria-cuadros/cuadros/internal/apperr"
)

// isConstraint reports whether err is a SQLite constraint violation whose
// message mentions kind ("UNIQUE", "FOREIGN KEY", ...).
func isConstraint(err error, kind string) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	if se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return false
	}
	return strings.Contains(se.Error(), kind)
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, "FOREIGN KEY")
}

// translate maps driver errors onto the application taxonomy. Errors that
// already belong to the taxonomy pass through unchanged.
func translate(op string, err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	if isUniqueViolation(err) || isForeignKeyViolation(err) {
		return &apperr.Error{Kind: apperr.KindConflict, Message: conflictMsg, Err: err}
	}
	return apperr.Persistence(op, err)
}
