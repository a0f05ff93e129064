package tasks

import (
	"context"
	"fmt"
	"time"
)

// newSQLMaintenanceTask compacts the database and logs the table sizes
// afterwards. A failed row count does not fail the task.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "sql_maintenance")

	return func(ctx context.Context) error {
		start := time.Now()
		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database compaction failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		stats, err := deps.Store.Stats(ctx)
		if err != nil {
			log.WarnContext(ctx, "Could not count rows after compaction", "error", err)
			stats.Profiles, stats.Suggestions = -1, -1
		}
		log.InfoContext(ctx, "Database compacted",
			"duration", time.Since(start),
			"profiles", stats.Profiles,
			"suggestions", stats.Suggestions)
		return nil
	}
}
