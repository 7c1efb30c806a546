// Package retention periodically expires persisted history and idle
// anonymous sessions.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/harshilparmar0279-eng/ScamSlayer/internal/metrics"
	"github.com/harshilparmar0279-eng/ScamSlayer/internal/repository"

	cronlib "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops idle sessions and reports how many were removed
type Sweeper interface {
	Sweep() int
}

// Janitor runs the retention jobs on a cron schedule
type Janitor struct {
	repo          repository.HistoryRepository
	sessions      Sweeper
	retentionDays int
	schedule      string
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time

	cron *cronlib.Cron
}

// NewJanitor creates a janitor. repo and sessions may be nil; retentionDays
// of 0 keeps records forever.
func NewJanitor(repo repository.HistoryRepository, sessions Sweeper, retentionDays int, schedule string, m *metrics.Metrics, logger *zap.Logger) *Janitor {
	return &Janitor{
		repo:          repo,
		sessions:      sessions,
		retentionDays: retentionDays,
		schedule:      schedule,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// RunOnce performs a single retention pass
func (j *Janitor) RunOnce(ctx context.Context) {
	if j.repo != nil && j.retentionDays > 0 {
		cutoff := j.now().Add(-time.Duration(j.retentionDays) * 24 * time.Hour)
		n, err := j.repo.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			j.logger.Error("Failed to expire analysis history", zap.Time("cutoff", cutoff), zap.Error(err))
		} else {
			j.metrics.Expired(n)
			if n > 0 {
				j.logger.Info("Expired analysis history",
					zap.Int64("deleted", n),
					zap.Int("retention_days", j.retentionDays))
			}
		}
	}

	if j.sessions != nil {
		if n := j.sessions.Sweep(); n > 0 {
			j.logger.Info("Dropped idle sessions", zap.Int("sessions", n))
		}
	}
}

// Start schedules RunOnce and returns immediately
func (j *Janitor) Start() error {
	if j.cron != nil {
		return nil
	}

	c := cronlib.New()
	if _, err := c.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid janitor schedule %q: %w", j.schedule, err)
	}

	c.Start()
	j.cron = c
	j.logger.Info("Retention janitor started",
		zap.String("schedule", j.schedule),
		zap.Int("retention_days", j.retentionDays))
	return nil
}

// Stop halts scheduling and waits for a running pass to finish
func (j *Janitor) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.cron = nil
}
