package tasks

import (
	"context"
	"fmt"
	"time"
)

const defaultSuggestionRetention = 90 * 24 * time.Hour

// newSuggestionPruningTask creates the task that deletes suggestions older
// than the configured retention.
func newSuggestionPruningTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "suggestion_pruning")

	return func(ctx context.Context) error {
		retention := defaultSuggestionRetention
		if deps.Config != nil && deps.Config.Database.SuggestionRetention > 0 {
			retention = deps.Config.Database.SuggestionRetention
		}
		cutoff := time.Now().Add(-retention)

		deleted, err := deps.Store.PruneSuggestions(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "Suggestion pruning failed", "error", err, "cutoff", cutoff)
			return fmt.Errorf("suggestion pruning failed: %w", err)
		}

		log.InfoContext(ctx, "Pruned old suggestions", "deleted", deleted, "cutoff", cutoff)
		return nil
	}
}
