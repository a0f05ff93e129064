package database

import (
	"database/sql"
	"time"
)

// WellnessProfile holds the self-reported attributes of one user. Every
// attribute is optional.
type WellnessProfile struct {
	UserID        int64           `db:"user_id"`
	Age           sql.NullInt64   `db:"age"`
	Gender        sql.NullString  `db:"gender"`
	HeightCm      sql.NullFloat64 `db:"height_cm"`
	WeightKg      sql.NullFloat64 `db:"weight_kg"`
	ActivityLevel sql.NullString  `db:"activity_level"`
	SleepGoal     sql.NullInt64   `db:"sleep_goal"`
	Budget        sql.NullString  `db:"budget"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// Suggestion is one generated suggestion set kept as history.
type Suggestion struct {
	ID        int64        `db:"id"`
	UserID    int64        `db:"user_id"`
	Intent    string       `db:"intent"`
	Title     string       `db:"title"`
	Content   string       `db:"content"`
	Priority  string       `db:"priority"`
	Helpful   sql.NullBool `db:"helpful"`
	CreatedAt time.Time    `db:"created_at"`
}

// Stats summarizes table sizes.
type Stats struct {
	Profiles    int64 `db:"profiles"`
	Suggestions int64 `db:"suggestions"`
}
