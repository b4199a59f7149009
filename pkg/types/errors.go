package types

import "errors"

// Configuration errors. These are the only errors ProcessBatch surfaces to
// the caller; per-chunk service failures are captured in ChunkResult instead.
var (
	ErrInvalidChunkSize   = errors.New("max chunk size must be > 0")
	ErrInvalidConcurrency = errors.New("concurrency must be >= 1")
	ErrEmptyTemplate      = errors.New("prompt template cannot be empty")
)
