package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/wellnessbot/internal/advice"
	"github.com/edgard/wellnessbot/internal/coach"
	"github.com/edgard/wellnessbot/internal/config"
	"github.com/edgard/wellnessbot/internal/database"
)

// Coach is the part of *coach.Service the handlers use.
type Coach interface {
	Suggest(ctx context.Context, userID int64, intent advice.Intent) (coach.Result, error)
	Ask(ctx context.Context, userID int64, question string) (coach.Result, error)
	Profile(ctx context.Context, userID int64) (*database.WellnessProfile, error)
	UpdateProfileField(ctx context.Context, userID int64, field, value string) (*database.WellnessProfile, error)
	DeleteProfile(ctx context.Context, userID int64) (bool, error)
	History(ctx context.Context, userID int64, limit int) ([]*database.Suggestion, error)
}

// StatsSource reports row counts for the admin /stats command.
type StatsSource interface {
	Stats(ctx context.Context) (database.Stats, error)
}

// GatewayInfo exposes advice gateway state for /stats.
type GatewayInfo interface {
	CacheLen() int
	Roster() []string
}

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Coach  Coach
	Stats  StatsSource
	// Gateway is optional; when set /stats also reports cache state.
	Gateway GatewayInfo
}
