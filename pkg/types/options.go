package types

import (
	"fmt"
	"strings"
	"time"
)

// Template placeholders substituted into PromptTemplate per chunk.
const (
	PlaceholderContent     = "{{content}}"
	PlaceholderChunkIndex  = "{{chunkIndex}}"  // 1-based
	PlaceholderTotalChunks = "{{totalChunks}}"
)

// Default processing parameters.
const (
	DefaultMaxChunkSize = 24000
	DefaultConcurrency  = 3
	DefaultMaxTokens    = 4096
)

// ProgressFunc is invoked after each chunk resolves (success or failure).
// It fires exactly once per chunk with a strictly increasing completed
// count, ending at total.
type ProgressFunc func(completed, total int)

// ProcessingOptions configures a single batch run.
type ProcessingOptions struct {
	// MaxChunkSize is the segmentation size bound in bytes. Must be > 0.
	MaxChunkSize int

	// Concurrency is the wave size: the number of chunk requests issued
	// concurrently. Must be >= 1. The dispatcher waits for an entire wave
	// to settle before starting the next one.
	Concurrency int

	// Model is the completion model identifier passed to the client.
	Model string

	// MaxTokens is the completion token limit per chunk request.
	MaxTokens int

	// SystemPrompt is sent with every chunk request.
	SystemPrompt string

	// PromptTemplate is the per-chunk user prompt. It must be non-empty
	// and may contain the {{content}}, {{chunkIndex}} and {{totalChunks}}
	// placeholders.
	PromptTemplate string

	// RequestTimeout, when > 0, bounds each individual completion call.
	// Zero means no per-request timeout, matching the observed contract.
	RequestTimeout time.Duration

	// OnProgress, when non-nil, receives progress updates.
	OnProgress ProgressFunc
}

// DefaultProcessingOptions returns options with sensible defaults. The
// prompt template still has to be set by the caller or a preset.
func DefaultProcessingOptions() ProcessingOptions {
	return ProcessingOptions{
		MaxChunkSize: DefaultMaxChunkSize,
		Concurrency:  DefaultConcurrency,
		MaxTokens:    DefaultMaxTokens,
	}
}

// Validate checks the options before any dispatch. Invalid configuration
// fails fast; nothing is silently clamped.
func (o ProcessingOptions) Validate() error {
	if o.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size %d", ErrInvalidChunkSize, o.MaxChunkSize)
	}
	if o.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency %d", ErrInvalidConcurrency, o.Concurrency)
	}
	if strings.TrimSpace(o.PromptTemplate) == "" {
		return ErrEmptyTemplate
	}
	return nil
}
