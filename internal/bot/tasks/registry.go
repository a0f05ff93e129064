package tasks

import (
	"context"
)

// ScheduledTaskFunc is the signature of every scheduled task. The context
// provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks returns the scheduled tasks keyed by the names used in the
// scheduler.tasks configuration section.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		"sql_maintenance":    newSQLMaintenanceTask(deps),
		"suggestion_pruning": newSuggestionPruningTask(deps),
	}
	if deps.Cache != nil {
		tasks["cache_purge"] = newCachePurgeTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
