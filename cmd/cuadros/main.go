// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/config"
	"github.com/galeria-cuadros/cuadros/internal/logging"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/service"
	"github.com/galeria-cuadros/cuadros/internal/store"
	"github.com/galeria-cuadros/cuadros/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = ""
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	cli.VersionPrinter = func(*cli.Command) {
		_, _ = fmt.Println(info.String())
	}

	cmd := &cli.Command{
		Name:    "cuadros",
		Usage:   "Galería de cuadros: catálogo público y panel de administración",
		Version: info.Number(),
		Action: func(ctx context.Context, _ *cli.Command) error {
			return serve(ctx, info)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server (default)",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return serve(ctx, info)
				},
			},
			{
				Name:  "migrate",
				Usage: "Apply database migrations and exit",
				Action: func(ctx context.Context, _ *cli.Command) error {
					_, db, err := setup()
					if err != nil {
						return err
					}
					defer closeDB(db)
					slog.Info("database migrated")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Create the default admin account when no user exists",
				Action: func(ctx context.Context, _ *cli.Command) error {
					cfg, db, err := setup()
					if err != nil {
						return err
					}
					defer closeDB(db)
					return store.Seed(ctx, db, auth.HashPassword, cfg.AdminPassword)
				},
			},
			{
				Name:  "create-user",
				Usage: "Create a panel account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "nombre", Usage: "login name", Required: true},
					&cli.StringFlag{Name: "password", Usage: "password (at least 4 characters)", Required: true, Sources: cli.EnvVars("CUADROS_NEW_USER_PASSWORD")},
					&cli.StringFlag{Name: "rol", Usage: "admin, editor or viewer", Value: string(model.RoleViewer)},
				},
				Action: createUser,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// setup loads the configuration, installs the logger and opens the
// migrated database.
func setup() (*config.Config, *sqlx.DB, error) {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.Level()))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := store.Migrate(db); err != nil {
		closeDB(db)
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	return cfg, db, nil
}

func closeDB(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database connection", "error", err)
	}
}

func createUser(ctx context.Context, c *cli.Command) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	defer closeDB(db)

	users := service.NewUserService(store.NewUserStore(db), nil, slog.Default())
	id, err := users.Create(ctx, model.UserInput{
		Nombre:   c.String("nombre"),
		Password: c.String("password"),
		Rol:      model.Role(c.String("rol")),
	})
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	_, _ = fmt.Printf("user %q created with id %d\n", c.String("nombre"), id)
	return nil
}

// isShutdown reports whether err only signals a requested shutdown.
func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled)
}
