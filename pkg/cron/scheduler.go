// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron         *robfigcron.Cron
	materializer *expenses.Materializer
	logger       *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(materializer *expenses.Materializer, logger *slog.Logger) *Scheduler {
	c := robfigcron.New(robfigcron.WithLogger(
		robfigcron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:         c,
		materializer: materializer,
		logger:       logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Recurring expenses materialize daily at 6:00 AM. The job is idempotent
	// per day, a repeated run never double-records.
	_, err := s.cron.AddFunc("0 6 * * *", s.materializeRecurring)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the recurring materialization (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.materializeRecurring()
}

func (s *Scheduler) materializeRecurring() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	s.logger.Info("starting recurring expense materialization")

	count, err := s.materializer.MaterializeDue(ctx, time.Now())
	if err != nil {
		s.logger.Error("recurring expense materialization failed", slog.Any("error", err))
		return
	}

	s.logger.Info("recurring expense materialization completed",
		slog.Int("materialized", count),
	)
}
