package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TokenPurger deletes reset tokens that can no longer be used.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Maintenance wraps robfig/cron for housekeeping jobs.
type Maintenance struct {
	cron     *cron.Cron
	resets   TokenPurger
	schedule string
	logger   *zap.Logger
	now      func() time.Time
}

// NewMaintenance schedules the reset-token purge on schedule (cron syntax or @every/@hourly).
func NewMaintenance(resets TokenPurger, schedule string, logger *zap.Logger) *Maintenance {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Maintenance{
		cron:     cron.New(),
		resets:   resets,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler.
func (m *Maintenance) Start(ctx context.Context) error {
	if _, err := m.cron.AddFunc(m.schedule, func() { m.PurgeResetTokens(ctx) }); err != nil {
		return fmt.Errorf("schedule reset purge %q: %w", m.schedule, err)
	}
	m.cron.Start()
	m.logger.Info("maintenance scheduler started", zap.String("reset_purge", m.schedule))
	return nil
}

// Stop waits for running jobs to finish.
func (m *Maintenance) Stop() {
	<-m.cron.Stop().Done()
	m.logger.Info("maintenance scheduler stopped")
}

// PurgeResetTokens removes expired and used reset tokens.
func (m *Maintenance) PurgeResetTokens(ctx context.Context) {
	removed, err := m.resets.PurgeExpired(ctx, m.now())
	if err != nil {
		m.logger.Warn("reset token purge failed", zap.Error(err))
		return
	}
	if removed > 0 {
		m.logger.Info("reset tokens purged", zap.Int64("removed", removed))
	}
}
