// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from CUADROS_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/galeria-cuadros/cuadros/internal/logging"
	"github.com/galeria-cuadros/cuadros/internal/model"
	"github.com/galeria-cuadros/cuadros/internal/scheduler"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"CUADROS_DB_PATH" envDefault:"./data/cuadros.db"`
	SessionSecret string `env:"CUADROS_SESSION_SECRET,required"`
	ServerHost    string `env:"CUADROS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"CUADROS_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"CUADROS_ENV" envDefault:"development"`
	LogLevel      string `env:"CUADROS_LOG_LEVEL" envDefault:"info"`

	// Uploads
	UploadsDir  string `env:"CUADROS_UPLOADS_DIR" envDefault:"./uploads"`
	MaxUploadMB int    `env:"CUADROS_MAX_UPLOAD_MB" envDefault:"5"`
	ImageMaxDim int    `env:"CUADROS_IMAGE_MAX_DIM" envDefault:"1920"`
	UploadSweep string `env:"CUADROS_UPLOAD_SWEEP"` // cron spec; empty disables the sweep

	// Catalog
	CatalogPageSize  int    `env:"CUADROS_CATALOG_PAGE_SIZE" envDefault:"12"`
	SubcategoryNames string `env:"CUADROS_SUBCATEGORY_NAMES" envDefault:"case-sensitive"`

	// Sessions
	RedisURL        string        `env:"CUADROS_REDIS_URL"` // Optional Redis URL for the session store
	SessionLifetime time.Duration `env:"CUADROS_SESSION_LIFETIME" envDefault:"24h"`

	// Seeding configuration
	DoSeed        bool   `env:"CUADROS_DO_SEED" envDefault:"true"`
	AdminPassword string `env:"CUADROS_ADMIN_PASSWORD"`

	namePolicy model.NamePolicy
	logLevel   slog.Level
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisSessions returns true if sessions are kept in Redis.
func (c Config) UseRedisSessions() bool {
	return c.RedisURL != ""
}

// SweepEnabled returns true if the orphaned upload sweep is scheduled.
func (c Config) SweepEnabled() bool {
	return c.UploadSweep != ""
}

// MaxUploadBytes returns the per-file upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// NamePolicy returns the parsed subcategory name policy.
func (c Config) NamePolicy() model.NamePolicy {
	return c.namePolicy
}

// Level returns the parsed log level.
func (c Config) Level() slog.Level {
	return c.logLevel
}

// MinSessionSecretLength is the minimum required length for the session secret.
// It doubles as the CSRF key, which must be 32 bytes.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("CUADROS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("CUADROS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("CUADROS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	var err error
	if cfg.namePolicy, err = model.ParseNamePolicy(cfg.SubcategoryNames); err != nil {
		return nil, fmt.Errorf("CUADROS_SUBCATEGORY_NAMES: %w", err)
	}
	if cfg.logLevel, err = logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("CUADROS_LOG_LEVEL: %w", err)
	}
	if cfg.MaxUploadMB < 1 {
		return nil, fmt.Errorf("CUADROS_MAX_UPLOAD_MB must be at least 1, got %d", cfg.MaxUploadMB)
	}
	if cfg.ImageMaxDim < 64 {
		return nil, fmt.Errorf("CUADROS_IMAGE_MAX_DIM must be at least 64, got %d", cfg.ImageMaxDim)
	}
	if cfg.CatalogPageSize < 1 || cfg.CatalogPageSize > model.MaxCatalogPageSize {
		return nil, fmt.Errorf("CUADROS_CATALOG_PAGE_SIZE must be between 1 and %d, got %d",
			model.MaxCatalogPageSize, cfg.CatalogPageSize)
	}
	if cfg.SessionLifetime < time.Minute {
		return nil, fmt.Errorf("CUADROS_SESSION_LIFETIME must be at least 1m, got %s", cfg.SessionLifetime)
	}
	if cfg.SweepEnabled() {
		if err := scheduler.ValidateSpec(cfg.UploadSweep); err != nil {
			return nil, fmt.Errorf("CUADROS_UPLOAD_SWEEP: %w", err)
		}
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
