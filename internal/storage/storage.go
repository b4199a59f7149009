package storage

import (
	"context"
	"errors"
	"time"

	"github.com/kmullins/repodoc/pkg/types"
)

// Common storage errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// RunStatus describes the outcome of a generation run.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusPartial   RunStatus = "partial"
	StatusFailed    RunStatus = "failed"
)

// Run records one documentation generation run.
type Run struct {
	ID        string        `json:"id"`
	RootPath  string        `json:"root_path"`
	DocType   string        `json:"doc_type"`
	Model     string        `json:"model,omitempty"`
	Status    RunStatus     `json:"status"`
	Metrics   types.Metrics `json:"metrics"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store defines the persistence interface for generation runs.
type Store interface {
	// SaveRun persists a run together with its document and chunk results.
	SaveRun(ctx context.Context, run *Run, document string, chunks []types.ChunkResult) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns lists the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// GetDocument retrieves the generated document for a run.
	GetDocument(ctx context.Context, runID string) (string, error)

	// GetChunkResults retrieves per-chunk outcomes for a run.
	GetChunkResults(ctx context.Context, runID string) ([]types.ChunkResult, error)

	// Close releases database resources.
	Close() error
}

// StatusForResult derives a run status from chunk outcomes.
func StatusForResult(result *types.ProcessingResult) RunStatus {
	if result.Metrics.TotalChunks == 0 {
		return StatusCompleted
	}
	failed := len(result.FailedChunks())
	switch {
	case failed == 0:
		return StatusCompleted
	case failed == result.Metrics.TotalChunks:
		return StatusFailed
	default:
		return StatusPartial
	}
}
