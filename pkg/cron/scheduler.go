// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ericlbarreto/conta-ai/internal/domain/chat"
)

// Scheduler runs the session janitor on a fixed schedule.
type Scheduler struct {
	cron     *cron.Cron
	sessions *chat.Registry
	ttl      time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(sessions *chat.Registry, ttl time.Duration, logger *slog.Logger) *Scheduler {
	// Standard 5-field format, no seconds
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Session cleanup: every 15 minutes
	_, err := s.cron.AddFunc("*/15 * * * *", s.purgeIdleSessions)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.Duration("session_ttl", s.ttl),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the session cleanup (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.purgeIdleSessions()
}

// purgeIdleSessions drops sessions that have been idle past the TTL.
func (s *Scheduler) purgeIdleSessions() {
	purged := s.sessions.PurgeIdle(s.ttl)
	if purged > 0 {
		s.logger.Info("purged idle sessions",
			slog.Int("purged", purged),
			slog.Int("remaining", s.sessions.Len()),
		)
		return
	}
	s.logger.Debug("no idle sessions to purge",
		slog.Int("live", s.sessions.Len()),
	)
}
