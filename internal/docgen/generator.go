package docgen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kmullins/repodoc/internal/batch"
	"github.com/kmullins/repodoc/internal/extractor"
	"github.com/kmullins/repodoc/internal/llm"
	"github.com/kmullins/repodoc/internal/storage"
	"github.com/kmullins/repodoc/pkg/types"
)

// Generator runs the full pipeline: extract a repository into a marked
// corpus, segment and dispatch it to the completion client, then persist
// the run.
type Generator struct {
	client llm.CompletionClient
	store  storage.Store
}

// New creates a Generator. The store may be nil, in which case runs are
// not persisted.
func New(client llm.CompletionClient, store storage.Store) *Generator {
	return &Generator{client: client, store: store}
}

// Options configures one generation run.
type Options struct {
	// DocType selects the prompt preset. DocTypeCustom requires
	// Processing.SystemPrompt and Processing.PromptTemplate to be set.
	DocType DocType

	// Extract configures the repository walk.
	Extract extractor.Options

	// Processing configures segmentation and dispatch. Zero-valued size,
	// concurrency and token fields are filled with defaults.
	Processing types.ProcessingOptions
}

// RunResult is the outcome of one generation run.
type RunResult struct {
	RunID  string
	Run    *storage.Run
	Corpus *extractor.Corpus
	Result *types.ProcessingResult
}

// Generate extracts the repository at root and produces a document of the
// requested type. Per-chunk completion failures are recorded in the result,
// not returned as errors; only extraction, configuration and persistence
// problems surface here.
func (g *Generator) Generate(ctx context.Context, root string, opts Options) (*RunResult, error) {
	procOpts := opts.Processing
	if procOpts.MaxChunkSize == 0 {
		procOpts.MaxChunkSize = types.DefaultMaxChunkSize
	}
	if procOpts.Concurrency == 0 {
		procOpts.Concurrency = types.DefaultConcurrency
	}
	if procOpts.MaxTokens == 0 {
		procOpts.MaxTokens = types.DefaultMaxTokens
	}
	if procOpts.Model == "" {
		procOpts.Model = g.client.Model()
	}
	if err := resolvePrompts(opts.DocType, &procOpts); err != nil {
		return nil, err
	}

	corpus, err := extractor.Extract(root, opts.Extract)
	if err != nil {
		return nil, fmt.Errorf("failed to extract repository: %w", err)
	}

	result, err := batch.Process(ctx, corpus.Text, g.client, procOpts)
	if err != nil {
		return nil, err
	}

	run := &storage.Run{
		ID:        uuid.New().String(),
		RootPath:  corpus.RootPath,
		DocType:   string(opts.DocType),
		Model:     procOpts.Model,
		Status:    storage.StatusForResult(result),
		Metrics:   result.Metrics,
		CreatedAt: time.Now().UTC(),
	}

	if g.store != nil {
		if err := g.store.SaveRun(ctx, run, result.CombinedResult, result.ChunkResults); err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}

	return &RunResult{
		RunID:  run.ID,
		Run:    run,
		Corpus: corpus,
		Result: result,
	}, nil
}
