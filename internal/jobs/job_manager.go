package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Schedules holds the cron spec of every job.
type Schedules struct {
	CatalogRefresh  string
	SessionEviction string
}

// Sessions is the part of the session registry the jobs drive.
type Sessions interface {
	SessionRepricer
	SessionEvicter
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	catalogRefreshJob  *CatalogRefreshJob
	sessionEvictionJob *SessionEvictionJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	schedules Schedules,
	catalog CatalogRefresher,
	sessions Sessions,
	idleTTL time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		catalogRefreshJob:  NewCatalogRefreshJob(schedules.CatalogRefresh, catalog, sessions, logger),
		sessionEvictionJob: NewSessionEvictionJob(schedules.SessionEviction, idleTTL, sessions, logger),
	}
}

// CatalogRefresh exposes the refresh job so start-up can run it once eagerly.
func (jm *JobManager) CatalogRefresh() *CatalogRefreshJob {
	return jm.catalogRefreshJob
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.catalogRefreshJob.Start(); err != nil {
		return fmt.Errorf("failed to start catalog refresh job: %w", err)
	}

	if err := jm.sessionEvictionJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.catalogRefreshJob.Stop()
		return fmt.Errorf("failed to start session eviction job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.sessionEvictionJob.Stop()
	jm.catalogRefreshJob.Stop()
}
