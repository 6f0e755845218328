// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"

	"github.com/galeria-cuadros/cuadros/internal/middleware"
	"github.com/galeria-cuadros/cuadros/internal/model"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"

	// minDiskSpace is the free space below which uploads are reported degraded.
	minDiskSpace = 100 << 20
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db         *sqlx.DB
	uploadsDir string
	version    string
	startTime  time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sqlx.DB, uploadsDir, version string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		uploadsDir: uploadsDir,
		version:    version,
		startTime:  time.Now(),
	}
}

// HealthStatus is the health response. Only administrators see the checks
// and system details.
type HealthStatus struct {
	Status    string           `json:"status"`
	Timestamp *time.Time       `json:"timestamp,omitempty"`
	Uptime    string           `json:"uptime,omitempty"`
	Version   string           `json:"version,omitempty"`
	Checks    map[string]Check `json:"checks,omitempty"`
	System    *SystemInfo      `json:"system,omitempty"`
}

// Check represents a single health check result.
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo contains system-level information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutines"`
	NumCPU       int    `json:"num_cpus"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbCheck := h.checkDatabase(r.Context())
	diskCheck := h.checkDiskSpace()

	status := HealthStatus{Status: statusHealthy}
	code := http.StatusOK
	if dbCheck.Status != statusHealthy || diskCheck.Status != statusHealthy {
		status.Status = statusDegraded
		code = http.StatusServiceUnavailable
	}

	if u, ok := middleware.GetUser(r); ok && u.Rol == model.RoleAdmin {
		now := time.Now().UTC()
		status.Timestamp = &now
		status.Uptime = time.Since(h.startTime).Round(time.Second).String()
		status.Version = h.version
		status.Checks = map[string]Check{
			"database": dbCheck,
			"disk":     diskCheck,
		}
		if r.URL.Query().Get("verbose") == "true" {
			status.System = systemInfo()
		}
	}

	WriteJSON(w, code, status)
}

// Liveness handles GET /healthz/live.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /healthz/ready: the database must answer.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.checkDatabase(r.Context()).Status != statusHealthy {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	latency := time.Since(start).String()
	if err != nil {
		return Check{Status: statusUnhealthy, Message: err.Error(), Latency: latency}
	}
	return Check{Status: statusHealthy, Message: "Connected", Latency: latency}
}

// checkDiskSpace checks the free space of the uploads directory.
func (h *HealthHandler) checkDiskSpace() Check {
	if _, err := os.Stat(h.uploadsDir); os.IsNotExist(err) {
		return Check{Status: statusHealthy, Message: "Uploads directory does not exist yet"}
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(h.uploadsDir, &stat); err != nil {
		return Check{Status: statusUnhealthy, Message: "Failed to check disk space: " + err.Error()}
	}

	available := stat.Bavail * uint64(stat.Bsize) // #nosec G115 -- block size is positive
	msg := humanize.IBytes(available) + " available"
	if available < minDiskSpace {
		return Check{Status: statusDegraded, Message: "Low disk space: " + msg}
	}
	return Check{Status: statusHealthy, Message: msg}
}

func systemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &SystemInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     humanize.IBytes(m.Alloc),
		MemSys:       humanize.IBytes(m.Sys),
	}
}
