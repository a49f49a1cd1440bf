package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"fulfillment/internal/core/domain/model/kernel"
)

// SessionEvicter drops sessions idle for longer than ttl.
type SessionEvicter interface {
	EvictIdle(ctx context.Context, ttl time.Duration) []kernel.OrderCode
}

// SessionEvictionJob drops abandoned editing sessions. Queued image jobs are
// not affected.
type SessionEvictionJob struct {
	schedule string
	ttl      time.Duration
	sessions SessionEvicter
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSessionEvictionJob creates a job that evicts sessions idle longer than ttl
// on schedule.
func NewSessionEvictionJob(
	schedule string,
	ttl time.Duration,
	sessions SessionEvicter,
	logger *slog.Logger,
) *SessionEvictionJob {
	return &SessionEvictionJob{
		schedule: schedule,
		ttl:      ttl,
		sessions: sessions,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "session_eviction_job"),
	}
}

// Run performs one eviction pass and logs every evicted order.
func (j *SessionEvictionJob) Run(ctx context.Context) {
	evicted := j.sessions.EvictIdle(ctx, j.ttl)
	for _, code := range evicted {
		j.logger.InfoContext(ctx, "Evicted idle editing session", "orderCode", code.String())
	}
}

// Start schedules the job and starts its cron runner.
// Returns an error if the schedule cannot be parsed.
func (j *SessionEvictionJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Session eviction job started", "schedule", j.schedule, "ttl", j.ttl)
	return nil
}

// Stop stops the runner and waits for a running pass to finish.
func (j *SessionEvictionJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Session eviction job stopped")
}
