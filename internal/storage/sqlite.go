package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kmullins/repodoc/pkg/types"
)

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path
// and applies any pending migrations.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := openDatabase(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

func openDatabase(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite handles concurrent access poorly with multiple connections.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// SaveRun persists a run, its document, and its chunk results atomically.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run, document string, chunks []types.ChunkResult) error {
	if run == nil {
		return fmt.Errorf("run is required")
	}
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root_path, doc_type, model, status,
			total_chunks, total_input_chars, total_output_chars,
			estimated_input_tokens, processing_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RootPath, run.DocType, run.Model, string(run.Status),
		run.Metrics.TotalChunks, run.Metrics.TotalInputChars,
		run.Metrics.TotalOutputChars, run.Metrics.EstimatedInputTokens,
		run.Metrics.ProcessingTimeMs, run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO documents (run_id, content) VALUES (?, ?)",
		run.ID, document,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	for _, chunk := range chunks {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO chunk_results (run_id, chunk_index, output, error, success)
			VALUES (?, ?, ?, ?, ?)`,
			run.ID, chunk.Index, chunk.Output, chunk.Error, chunk.Success,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk result %d: %w", chunk.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root_path, doc_type, model, status,
			total_chunks, total_input_chars, total_output_chars,
			estimated_input_tokens, processing_time_ms, created_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns lists the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root_path, doc_type, model, status,
			total_chunks, total_input_chars, total_output_chars,
			estimated_input_tokens, processing_time_ms, created_at
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetDocument retrieves the generated document for a run.
func (s *SQLiteStore) GetDocument(ctx context.Context, runID string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		"SELECT content FROM documents WHERE run_id = ?", runID).Scan(&content)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("document for run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get document: %w", err)
	}
	return content, nil
}

// GetChunkResults retrieves per-chunk outcomes for a run, ordered by index.
func (s *SQLiteStore) GetChunkResults(ctx context.Context, runID string) ([]types.ChunkResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chunk_index, output, error, success
		FROM chunk_results WHERE run_id = ? ORDER BY chunk_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []types.ChunkResult
	for rows.Next() {
		var cr types.ChunkResult
		if err := rows.Scan(&cr.Index, &cr.Output, &cr.Error, &cr.Success); err != nil {
			return nil, fmt.Errorf("failed to scan chunk result: %w", err)
		}
		results = append(results, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk results: %w", err)
	}
	return results, nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var run Run
	var status string
	var createdAt time.Time
	err := row.Scan(&run.ID, &run.RootPath, &run.DocType, &run.Model, &status,
		&run.Metrics.TotalChunks, &run.Metrics.TotalInputChars,
		&run.Metrics.TotalOutputChars, &run.Metrics.EstimatedInputTokens,
		&run.Metrics.ProcessingTimeMs, &createdAt)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.CreatedAt = createdAt
	return &run, nil
}
