// Package jobs defines background tasks processed by the Asynq worker.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCatalogCacheWarm rebuilds the cached catalog listing.
	TaskCatalogCacheWarm = "catalog:cache_warm"
	// TaskCatalogIntegrityScan verifies catalog invariants across persisted rows.
	TaskCatalogIntegrityScan = "catalog:integrity_scan"
)

// NewCatalogCacheWarmTask constructs the cache warm task.
func NewCatalogCacheWarmTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogCacheWarm, nil)
}

// NewCatalogIntegrityScanTask constructs the integrity scan task.
func NewCatalogIntegrityScanTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogIntegrityScan, nil)
}
