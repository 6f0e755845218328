// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/galeria-cuadros/cuadros/internal/auth"
	"github.com/galeria-cuadros/cuadros/internal/config"
	"github.com/galeria-cuadros/cuadros/internal/handler"
	"github.com/galeria-cuadros/cuadros/internal/handler/api"
	"github.com/galeria-cuadros/cuadros/internal/logging"
	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/render"
	"github.com/galeria-cuadros/cuadros/internal/scheduler"
	"github.com/galeria-cuadros/cuadros/internal/service"
	"github.com/galeria-cuadros/cuadros/internal/session"
	"github.com/galeria-cuadros/cuadros/internal/store"
	"github.com/galeria-cuadros/cuadros/internal/upload"
	"github.com/galeria-cuadros/cuadros/internal/version"
	"github.com/galeria-cuadros/cuadros/web"
)

// API rate limit per client IP.
const (
	apiRateLimit = 20
	apiBurst     = 40
)

func serve(ctx context.Context, info version.Info) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	defer closeDB(db)
	logger := slog.Default()

	if cfg.DoSeed {
		if err := store.Seed(ctx, db, auth.HashPassword, cfg.AdminPassword); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	uploads, err := upload.New(upload.Config{
		Dir:      cfg.UploadsDir,
		MaxBytes: cfg.MaxUploadBytes(),
		MaxDim:   cfg.ImageMaxDim,
	})
	if err != nil {
		return fmt.Errorf("initializing uploads: %w", err)
	}

	sessionStore, closeSessions, err := newSessionStore(ctx, cfg, db.DB)
	if err != nil {
		return err
	}
	defer closeSessions()
	sessionManager := session.New(sessionStore, session.Options{
		Lifetime: cfg.SessionLifetime,
		IsDev:    cfg.IsDevelopment(),
	})

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: sessionManager})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	// Stores and services
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db, cfg.NamePolicy())
	cuadroStore := store.NewCuadroStore(db)

	categories := service.NewCategoryService(categoryStore, uploads, logger)
	cuadros := service.NewCuadroService(cuadroStore, uploads, logger)
	users := service.NewUserService(userStore, uploads, logger)
	authenticator := service.NewAuthenticator(userStore, logger)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()
	apiLimiter := middleware.NewGlobalRateLimiter(apiRateLimit, apiBurst)
	defer apiLimiter.Close()

	if cfg.SweepEnabled() {
		sched := scheduler.New(scheduler.SweeperFunc(func(ctx context.Context) (int, error) {
			return uploads.Sweep(ctx, func(ctx context.Context) (map[string]struct{}, error) {
				return store.ReferencedUploads(ctx, db)
			}, upload.DefaultSweepGrace)
		}), logger)
		if err := sched.Start(cfg.UploadSweep); err != nil {
			return fmt.Errorf("starting scheduler: %w", err)
		}
		defer sched.Stop()
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authenticator, renderer, sessionManager, loginProtection, logger)
	catalogHandler := handler.NewCatalogHandler(cuadros, categories, renderer, cfg.CatalogPageSize, logger)
	adminHandler := handler.NewAdminHandler(db, cuadros, renderer, logger)
	healthHandler := handler.NewHealthHandler(db, cfg.UploadsDir, info.Number())
	errorPages := handler.NewErrorPages(renderer, logger)
	apiHandler := api.NewHandler(api.Deps{
		Categories: categories,
		Cuadros:    cuadros,
		Users:      users,
		Uploads:    uploads,
		Logger:     logger,
	})

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(chimw.RedirectSlashes)

	secCfg := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	secCfg.ExcludePrefixes = []string{upload.URLPrefix + "/"}
	r.Use(middleware.SecurityHeaders(secCfg))

	r.NotFound(errorPages.NotFound)
	r.MethodNotAllowed(errorPages.MethodNotAllowed)

	// Health checks stay outside sessions so probes do not create them.
	r.Get("/healthz/live", healthHandler.Liveness)
	r.Get("/healthz/ready", healthHandler.Readiness)

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Handle(upload.URLPrefix+"/*", http.StripPrefix(upload.URLPrefix+"/", http.FileServer(http.Dir(uploads.Dir()))))

	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.LoadUser(sessionManager, userStore))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret)[:config.MinSessionSecretLength], cfg.IsDevelopment())))

		r.Get("/healthz", healthHandler.Health)

		r.Get(handler.RouteRoot, catalogHandler.Home)
		r.Get(handler.RouteCatalogo, catalogHandler.Catalog)

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated)
			r.Get(handler.RouteAdmin, adminHandler.Dashboard)
		})

		r.Route("/api", func(r chi.Router) {
			r.Use(apiLimiter.Middleware())
			apiHandler.Routes(r)
		})
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Longer to allow for large uploads and slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Number())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !isShutdown(err) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// newSessionStore returns the Redis store when CUADROS_REDIS_URL is set and
// the SQLite store otherwise. The returned func releases the store.
func newSessionStore(ctx context.Context, cfg *config.Config, db *sql.DB) (scs.Store, func(), error) {
	if !cfg.UseRedisSessions() {
		slog.Info("using sqlite session store")
		return session.NewSQLiteStore(db), func() {}, nil
	}

	client, err := session.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting session redis: %w", err)
	}
	slog.Info("using redis session store")
	return session.NewRedisStore(client), func() {
		if err := client.Close(); err != nil {
			slog.Error("error closing redis client", "error", err)
		}
	}, nil
}
