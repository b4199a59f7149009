package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.0.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Generation runs
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    root_path TEXT NOT NULL,
    doc_type TEXT NOT NULL,
    model TEXT,
    status TEXT NOT NULL,
    total_chunks INTEGER DEFAULT 0,
    total_input_chars INTEGER DEFAULT 0,
    total_output_chars INTEGER DEFAULT 0,
    estimated_input_tokens INTEGER DEFAULT 0,
    processing_time_ms INTEGER DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_root_path ON runs(root_path);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

-- Generated documents, one per run
CREATE TABLE IF NOT EXISTS documents (
    run_id TEXT PRIMARY KEY,
    content TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Per-chunk outcomes for a run
CREATE TABLE IF NOT EXISTS chunk_results (
    run_id TEXT NOT NULL,
    chunk_index INTEGER NOT NULL,
    output TEXT,
    error TEXT,
    success BOOLEAN NOT NULL,
    PRIMARY KEY (run_id, chunk_index),
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
`

const migrationV1Down = `
DROP TABLE IF EXISTS chunk_results;
DROP TABLE IF EXISTS documents;
DROP TABLE IF EXISTS runs;
DROP TABLE IF EXISTS schema_version;
`

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	// Default to 0.0.0 when no migrations have been applied yet.
	var currentVersion *semver.Version
	if err == sql.ErrNoRows {
		currentVersion = semver.MustParse("0.0.0")
	} else if err != nil {
		return fmt.Errorf("failed to check schema_version table: %w", err)
	} else {
		var currentVersionStr string
		err = db.QueryRowContext(ctx, "SELECT version FROM schema_version ORDER BY applied_at DESC LIMIT 1").Scan(&currentVersionStr)
		if err == sql.ErrNoRows || currentVersionStr == "" {
			currentVersion = semver.MustParse("0.0.0")
		} else if err != nil {
			return fmt.Errorf("failed to read schema_version: %w", err)
		} else {
			currentVersion, err = semver.NewVersion(currentVersionStr)
			if err != nil {
				return fmt.Errorf("invalid current schema version %s: %w", currentVersionStr, err)
			}
		}
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}

		if !currentVersion.LessThan(migrationVersion) {
			continue // Already applied
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}

		currentVersion = migrationVersion
	}

	return nil
}
