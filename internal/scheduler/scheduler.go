// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs background maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes orphaned uploads and reports how many it removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// SweeperFunc adapts a function to Sweeper.
type SweeperFunc func(ctx context.Context) (int, error)

// Sweep calls f.
func (f SweeperFunc) Sweep(ctx context.Context) (int, error) {
	return f(ctx)
}

// sweepTimeout bounds a single sweep run.
const sweepTimeout = 5 * time.Minute

// Scheduler handles scheduled maintenance like the orphaned upload sweep.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *slog.Logger
}

// New creates a new scheduler instance.
func New(sweeper Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
}

// Start registers the sweep under the standard five-field cron spec and
// starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "sweep", spec)
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	removed, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.logger.Error("upload sweep failed", "removed", removed, "error", err)
		return
	}
	if removed > 0 {
		s.logger.Info("orphaned uploads removed", "count", removed, "duration", time.Since(start))
	}
}

// ValidateSpec reports whether spec is a valid five-field cron expression.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}
