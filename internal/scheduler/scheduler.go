// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic storage maintenance jobs.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner and its jobs. Event retention is handled
// inline by the listing handlers, not here; this covers only housekeeping
// that nothing else triggers.
type Scheduler struct {
	cron   *cron.Cron
	db     *sql.DB
	logger *slog.Logger
}

// New creates a scheduler with the standard maintenance jobs registered.
func New(db *sql.DB, logger *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		db:     db,
		logger: logger,
	}

	// Expired sessions hourly, query planner stats nightly.
	if _, err := s.cron.AddFunc("@hourly", s.purgeExpiredSessions); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc("@midnight", s.optimizeDatabase); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("maintenance scheduler started")
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}

// purgeExpiredSessions removes session rows whose expiry has passed. The
// session store reads expiry lazily, so stale rows otherwise accumulate.
func (s *Scheduler) purgeExpiredSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The session store keeps expiry as a julian day number.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expiry < julianday('now')`)
	if err != nil {
		s.logger.Warn("purging expired sessions failed", "error", err)
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Info("purged expired sessions", "count", n)
	}
}

// optimizeDatabase refreshes SQLite's internal statistics.
func (s *Scheduler) optimizeDatabase() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `PRAGMA optimize`); err != nil {
		s.logger.Warn("database optimize failed", "error", err)
		return
	}
	s.logger.Debug("database optimized")
}
