package batch

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kmullins/repodoc/internal/llm"
	"github.com/kmullins/repodoc/internal/segmenter"
	"github.com/kmullins/repodoc/pkg/types"
)

// Process is the batch entry point: it segments content, dispatches the
// chunks wave by wave and aggregates the ordered results. Only invalid
// configuration surfaces as an error; per-chunk service failures are
// captured in the result.
func Process(ctx context.Context, content string, client llm.CompletionClient, opts types.ProcessingOptions) (*types.ProcessingResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	chunks, err := segmenter.Segment(content, opts.MaxChunkSize)
	if err != nil {
		return nil, err
	}

	return ProcessChunks(ctx, chunks, client, opts)
}

// ProcessChunks dispatches pre-segmented chunks to the completion client.
//
// Chunks are grouped into sequential waves of min(concurrency, remaining)
// requests. Every request in a wave runs concurrently; the next wave does
// not start until the whole wave has settled. This is a hard barrier, not
// a sliding window: chunk k+concurrency never starts before chunk k's wave
// fully resolves, even if k finishes early.
//
// The returned ChunkResults are index-addressed by original chunk order
// regardless of completion timing, and the progress callback fires exactly
// once per chunk with a strictly increasing, gap-free count.
func ProcessChunks(ctx context.Context, chunks []types.Chunk, client llm.CompletionClient, opts types.ProcessingOptions) (*types.ProcessingResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	total := len(chunks)
	results := make([]types.ChunkResult, total)

	// All progress state lives here, threaded through the call; nothing is
	// package-level, so concurrent batch runs cannot interfere.
	var mu sync.Mutex
	completed := 0
	resolve := func(idx int, res types.ChunkResult) {
		results[idx] = res
		mu.Lock()
		completed++
		if opts.OnProgress != nil {
			// Invoked under the lock so observed counts never go backwards.
			opts.OnProgress(completed, total)
		}
		mu.Unlock()
	}

	for waveStart := 0; waveStart < total; waveStart += opts.Concurrency {
		waveEnd := min(waveStart+opts.Concurrency, total)

		// Workers never return errors: failures are values in the result
		// slot. The group exists purely as the wave's join-all barrier.
		var wave errgroup.Group
		for i := waveStart; i < waveEnd; i++ {
			idx := i
			wave.Go(func() error {
				resolve(idx, processChunk(ctx, chunks[idx], total, client, opts))
				return nil
			})
		}
		_ = wave.Wait()
	}

	combined := aggregate(results)

	result := &types.ProcessingResult{
		CombinedResult: combined,
		ChunkResults:   results,
		Metrics:        computeMetrics(chunks, results, time.Since(start)),
	}
	return result, nil
}

// processChunk issues one completion request and converts any failure into
// an error-carrying result. It never panics the batch and never returns an
// error: one bad chunk must not poison its wave.
func processChunk(ctx context.Context, chunk types.Chunk, total int, client llm.CompletionClient, opts types.ProcessingOptions) types.ChunkResult {
	prompt := buildPrompt(chunk, total, opts.PromptTemplate)

	cctx := ctx
	if opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
		defer cancel()
	}

	output, err := client.Complete(cctx, opts.SystemPrompt, prompt, opts.Model, opts.MaxTokens)
	if err != nil {
		return types.ChunkResult{Index: chunk.Index, Error: err.Error()}
	}
	return types.ChunkResult{Index: chunk.Index, Output: output, Success: true}
}

// buildPrompt substitutes the template placeholders for one chunk. The
// chunk content is annotated with its ordinal and size so the model sees
// where each part sits in the whole.
func buildPrompt(chunk types.Chunk, total int, template string) string {
	return strings.NewReplacer(
		types.PlaceholderContent, segmenter.Annotate(chunk, total),
		types.PlaceholderChunkIndex, strconv.Itoa(chunk.Index+1),
		types.PlaceholderTotalChunks, strconv.Itoa(total),
	).Replace(template)
}
