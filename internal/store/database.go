// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store is the persistence layer: the SQLite schema, its migrations,
// and the category, cuadro and user repositories including the transactional
// subcategory reconciliation and the catalog query builder.
package store

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

//go:embed migrations/*.sql
var migrations embed.FS

// driverName is the database/sql name registered by modernc.org/sqlite.
const driverName = "sqlite"

func init() {
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// DBConfig holds database configuration options.
type DBConfig struct {
	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration
	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration
}

// DefaultDBConfig returns sensible defaults for SQLite in WAL mode.
func DefaultDBConfig() DBConfig {
	return DBConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		BusyTimeout:     5 * time.Second,
	}
}

// NewDB opens the SQLite database at path with the default configuration.
func NewDB(path string) (*sqlx.DB, error) {
	return NewDBWithConfig(path, DefaultDBConfig())
}

// NewDBWithConfig opens the SQLite database at path. Pragmas are passed in
// the DSN so that every pooled connection enforces foreign keys.
func NewDBWithConfig(path string, cfg DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn(path, cfg))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func dsn(path string, cfg DBConfig) string {
	pragmas := []string{
		"foreign_keys(1)",
		"journal_mode(WAL)",
		fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()),
		"synchronous(NORMAL)",
		"temp_store(MEMORY)",
	}
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// Migrate runs all pending database migrations.
func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
