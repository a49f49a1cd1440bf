package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// CatalogRefresher reloads every lookup table.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

// SessionRepricer reprices auto-priced details of open sessions.
type SessionRepricer interface {
	RepriceAll(ctx context.Context) int
}

// CatalogRefreshJob keeps the catalog store fresh and applies new prices to
// details still priced automatically.
type CatalogRefreshJob struct {
	schedule string
	catalog  CatalogRefresher
	sessions SessionRepricer
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewCatalogRefreshJob creates a job that refreshes catalog on schedule, a
// cron expression with an optional seconds field or a descriptor such as
// "@every 10m".
func NewCatalogRefreshJob(
	schedule string,
	catalog CatalogRefresher,
	sessions SessionRepricer,
	logger *slog.Logger,
) *CatalogRefreshJob {
	return &CatalogRefreshJob{
		schedule: schedule,
		catalog:  catalog,
		sessions: sessions,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "catalog_refresh_job"),
	}
}

// Run performs one refresh. Sessions are repriced even after a partial
// failure, since the tables that did load may have changed.
func (j *CatalogRefreshJob) Run(ctx context.Context) {
	if err := j.catalog.Refresh(ctx); err != nil {
		j.logger.WarnContext(ctx, "Catalog refresh incomplete, keeping previous tables", "error", err)
	}
	if repriced := j.sessions.RepriceAll(ctx); repriced > 0 {
		j.logger.InfoContext(ctx, "Repriced details after catalog refresh", "details", repriced)
	}
}

// Start schedules the job and starts its cron runner.
//
// Returns an error if the schedule cannot be parsed; the job is then not running.
func (j *CatalogRefreshJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Catalog refresh job started", "schedule", j.schedule)
	return nil
}

// Stop stops the runner and waits for a running refresh to finish.
func (j *CatalogRefreshJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Catalog refresh job stopped")
}
