package tasks

import (
	"context"
)

// newCachePurgeTask creates the task that evicts expired advice cache
// entries. Expired entries are otherwise only dropped when read.
func newCachePurgeTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_purge")

	return func(ctx context.Context) error {
		if n := deps.Cache.PurgeExpired(); n > 0 {
			log.DebugContext(ctx, "Purged expired cache entries", "count", n)
		}
		return nil
	}
}
