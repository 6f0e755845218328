// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql/driver"
	"fmt"
)

// Status is the lifecycle state of a soft-deletable row. It is persisted in
// the is_deleted column of every table.
type Status int

// Row states.
const (
	StatusActive  Status = 0
	StatusDeleted Status = 1
)

// IsActive reports whether the row is live.
func (s Status) IsActive() bool { return s == StatusActive }

// IsDeleted reports whether the row is soft-deleted.
func (s Status) IsDeleted() bool { return s == StatusDeleted }

func (s Status) String() string {
	if s == StatusDeleted {
		return "deleted"
	}
	return "active"
}

// Value implements driver.Valuer.
func (s Status) Value() (driver.Value, error) {
	return int64(s), nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = StatusActive
	case int64:
		*s = statusFromInt(v)
	case bool:
		if v {
			*s = StatusDeleted
		} else {
			*s = StatusActive
		}
	case []byte:
		if len(v) > 0 && v[0] != '0' {
			*s = StatusDeleted
		} else {
			*s = StatusActive
		}
	default:
		return fmt.Errorf("scanning status: unsupported type %T", src)
	}
	return nil
}

func statusFromInt(v int64) Status {
	if v != 0 {
		return StatusDeleted
	}
	return StatusActive
}
