// Package database provides the SQLite connection, schema migrations, models
// and the data access layer (Store).
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/wellnessbot/migrations"

	_ "modernc.org/sqlite" //revive:disable:blank-imports
)

// connPragmas are applied by the driver to every new connection. Pruning and
// VACUUM run next to user requests, so writers wait instead of failing fast.
var connPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(1)",
}

// NewDB opens the wellness database at path and migrates it to the latest
// schema. path is a file name or a file: DSN; caller pragmas are kept.
func NewDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", withPragmas(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open wellness database: %w", err)
	}

	// Profiles and history share one file with a single writer.
	db.SetMaxOpenConns(1)

	name := fileName(path)
	if err := migrateUp(db.DB, name); err != nil {
		CloseDB(db)
		return nil, err
	}

	slog.Info("Wellness database ready", "path", name)
	return db, nil
}

// CloseDB closes the database connection pool.
func CloseDB(db *sqlx.DB) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		slog.Error("Error closing database connection", "error", err)
	}
}

func migrateUp(db *sql.DB, name string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to read embedded migrations: %w", err)
	}
	target, err := sqlite.WithInstance(db, &sqlite.Config{DatabaseName: name})
	if err != nil {
		return fmt.Errorf("failed to prepare migration target: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("Wellness schema is up to date")
	case err != nil:
		return fmt.Errorf("failed to migrate wellness schema: %w", err)
	default:
		version, _, _ := m.Version()
		slog.Info("Wellness schema migrated", "version", version)
	}
	return nil
}

// withPragmas appends connPragmas to path unless the caller already set the
// same pragma.
func withPragmas(path string) string {
	var params []string
	for _, p := range connPragmas {
		name, _, _ := strings.Cut(p, "(")
		if !strings.Contains(path, "_pragma="+name) {
			params = append(params, "_pragma="+p)
		}
	}
	if len(params) == 0 {
		return path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// fileName strips a file: scheme and query parameters from a DSN, leaving
// the path of the database file.
func fileName(dsn string) string {
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}
