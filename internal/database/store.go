package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the data access operations. Lookups return nil, nil when no
// row matches.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetProfile returns the wellness profile of userID.
	GetProfile(ctx context.Context, userID int64) (*WellnessProfile, error)

	// SaveProfile inserts or replaces the profile of profile.UserID.
	SaveProfile(ctx context.Context, profile *WellnessProfile) error

	// DeleteProfile removes a profile and reports whether one existed.
	DeleteProfile(ctx context.Context, userID int64) (bool, error)

	// SaveSuggestion appends a suggestion to the history.
	SaveSuggestion(ctx context.Context, suggestion *Suggestion) error

	// LatestSuggestion returns the most recent suggestion for (userID, intent).
	LatestSuggestion(ctx context.Context, userID int64, intent string) (*Suggestion, error)

	// ListSuggestions returns up to limit suggestions for userID, newest first.
	ListSuggestions(ctx context.Context, userID int64, limit int) ([]*Suggestion, error)

	// MarkSuggestionHelpful records feedback on a suggestion owned by userID
	// and reports whether it exists.
	MarkSuggestionHelpful(ctx context.Context, userID, id int64, helpful bool) (bool, error)

	// PruneSuggestions deletes suggestions created before cutoff.
	PruneSuggestions(ctx context.Context, cutoff time.Time) (int64, error)

	// Stats returns row counts.
	Stats(ctx context.Context) (Stats, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

const (
	defaultSuggestionLimit = 20
	maxSuggestionLimit     = 100
)

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetProfile(ctx context.Context, userID int64) (*WellnessProfile, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user_id cannot be zero")
	}

	var profile WellnessProfile
	query := `SELECT user_id, age, gender, height_cm, weight_kg, activity_level, sleep_goal, budget, created_at, updated_at
	          FROM wellness_profiles WHERE user_id = ?`

	err := s.db.GetContext(ctx, &profile, query, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No wellness profile found", "user_id", userID)
		return nil, nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return nil, err
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting wellness profile", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get profile for user %d: %w", userID, err)
	}
	return &profile, nil
}

func (s *sqlxStore) SaveProfile(ctx context.Context, profile *WellnessProfile) error {
	if profile == nil {
		return fmt.Errorf("cannot save nil profile")
	}
	if profile.UserID == 0 {
		return fmt.Errorf("profile must have a non-zero user_id")
	}

	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	query := `
		INSERT INTO wellness_profiles (
			user_id, age, gender, height_cm, weight_kg, activity_level, sleep_goal, budget, created_at, updated_at
		) VALUES (
			:user_id, :age, :gender, :height_cm, :weight_kg, :activity_level, :sleep_goal, :budget, :created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			age = excluded.age,
			gender = excluded.gender,
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			activity_level = excluded.activity_level,
			sleep_goal = excluded.sleep_goal,
			budget = excluded.budget,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.NamedExecContext(ctx, query, profile); err != nil {
		s.logger.ErrorContext(ctx, "Error saving wellness profile", "user_id", profile.UserID, "error", err)
		return fmt.Errorf("failed to save profile for user %d: %w", profile.UserID, err)
	}

	s.logger.DebugContext(ctx, "Wellness profile saved", "user_id", profile.UserID)
	return nil
}

func (s *sqlxStore) DeleteProfile(ctx context.Context, userID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wellness_profiles WHERE user_id = ?`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting wellness profile", "user_id", userID, "error", err)
		return false, fmt.Errorf("failed to delete profile for user %d: %w", userID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *sqlxStore) SaveSuggestion(ctx context.Context, suggestion *Suggestion) error {
	if suggestion == nil {
		return fmt.Errorf("cannot save nil suggestion")
	}
	if suggestion.UserID == 0 {
		return fmt.Errorf("suggestion must have a non-zero user_id")
	}
	if suggestion.Content == "" {
		return fmt.Errorf("suggestion must have non-empty content")
	}
	if suggestion.CreatedAt.IsZero() {
		suggestion.CreatedAt = time.Now().UTC()
	}
	if suggestion.Priority == "" {
		suggestion.Priority = "medium"
	}

	query := `
		INSERT INTO suggestions (user_id, intent, title, content, priority, created_at)
		VALUES (:user_id, :intent, :title, :content, :priority, :created_at)
	`
	result, err := s.db.NamedExecContext(ctx, query, suggestion)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving suggestion", "user_id", suggestion.UserID, "intent", suggestion.Intent, "error", err)
		return fmt.Errorf("failed to save suggestion for user %d: %w", suggestion.UserID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		suggestion.ID = id
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving suggestion", "error", err)
	}

	s.logger.DebugContext(ctx, "Suggestion saved", "user_id", suggestion.UserID, "intent", suggestion.Intent, "id", suggestion.ID)
	return nil
}

func (s *sqlxStore) LatestSuggestion(ctx context.Context, userID int64, intent string) (*Suggestion, error) {
	var suggestion Suggestion
	query := `SELECT id, user_id, intent, title, content, priority, helpful, created_at
	          FROM suggestions
	          WHERE user_id = ? AND intent = ?
	          ORDER BY created_at DESC, id DESC
	          LIMIT 1`

	err := s.db.GetContext(ctx, &suggestion, query, userID, intent)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting latest suggestion", "user_id", userID, "intent", intent, "error", err)
		return nil, fmt.Errorf("failed to get latest suggestion for user %d: %w", userID, err)
	}
	return &suggestion, nil
}

func (s *sqlxStore) ListSuggestions(ctx context.Context, userID int64, limit int) ([]*Suggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	} else if limit > maxSuggestionLimit {
		limit = maxSuggestionLimit
	}

	var suggestions []*Suggestion
	query := `SELECT id, user_id, intent, title, content, priority, helpful, created_at
	          FROM suggestions
	          WHERE user_id = ?
	          ORDER BY created_at DESC, id DESC
	          LIMIT ?`

	if err := s.db.SelectContext(ctx, &suggestions, query, userID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error listing suggestions", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list suggestions for user %d: %w", userID, err)
	}
	return suggestions, nil
}

func (s *sqlxStore) MarkSuggestionHelpful(ctx context.Context, userID, id int64, helpful bool) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE suggestions SET helpful = ? WHERE id = ? AND user_id = ?`, helpful, id, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error marking suggestion", "user_id", userID, "id", id, "error", err)
		return false, fmt.Errorf("failed to mark suggestion %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *sqlxStore) PruneSuggestions(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM suggestions WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning suggestions", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to prune suggestions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}

func (s *sqlxStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	query := `SELECT
	            (SELECT COUNT(*) FROM wellness_profiles) AS profiles,
	            (SELECT COUNT(*) FROM suggestions) AS suggestions`
	if err := s.db.GetContext(ctx, &stats, query); err != nil {
		return Stats{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return stats, nil
}

// RunSQLMaintenance runs VACUUM followed by PRAGMA optimize. VACUUM cannot
// run inside a transaction.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context done before starting maintenance", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA optimize;"); err != nil {
		return fmt.Errorf("failed to execute PRAGMA optimize: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
