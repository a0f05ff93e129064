// Package tasks implements the scheduled maintenance tasks of the wellness
// bot and their registration.
package tasks

import (
	"log/slog"

	"github.com/edgard/wellnessbot/internal/config"
	"github.com/edgard/wellnessbot/internal/database"
)

// CachePurger drops expired entries from the advice response cache.
type CachePurger interface {
	PurgeExpired() int
}

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Cache  CachePurger
	Config *config.Config
}
