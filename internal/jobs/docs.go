// Package jobs provides scheduled background tasks for the fulfillment service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. CatalogRefreshJob - reloads the lookup tables and reprices auto-priced details in open sessions
// 2. SessionEvictionJob - drops editing sessions nobody touched for longer than the idle TTL
//
// # Usage
//
//	jobManager := jobs.NewJobManager(jobs.Schedules{
//		CatalogRefresh:  "@every 10m",
//		SessionEviction: "@every 5m",
//	}, catalogStore, registry, 2*time.Hour, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// Schedules accept the robfig/cron spec with an optional seconds field and
// descriptors such as "@every 5m" or "@hourly".
//
// # Error Handling
//
// A failed catalog refresh is logged; the store keeps serving the previous
// tables. Eviction has no failure mode. Failed job starts stop any already
// running jobs.
package jobs
