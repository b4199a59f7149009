package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kmullins/repodoc/internal/docgen"
	"github.com/kmullins/repodoc/internal/extractor"
	"github.com/kmullins/repodoc/internal/llm"
	"github.com/kmullins/repodoc/internal/storage"
	"github.com/kmullins/repodoc/pkg/types"
)

func main() {
	var (
		path         = flag.String("path", ".", "repository root to document")
		docType      = flag.String("type", "architecture", "documentation type: architecture, user-stories, narrative, custom")
		model        = flag.String("model", "", "completion model (defaults to the provider's default)")
		maxChunkSize = flag.Int("max-chunk-size", types.DefaultMaxChunkSize, "maximum chunk size in characters")
		concurrency  = flag.Int("concurrency", types.DefaultConcurrency, "chunk requests per wave")
		maxTokens    = flag.Int("max-tokens", types.DefaultMaxTokens, "completion token limit per chunk")
		timeout      = flag.Duration("timeout", 0, "per-request timeout (0 disables)")
		includeTests = flag.Bool("include-tests", false, "include test files in the corpus")
		systemPrompt = flag.String("system", "", "system prompt for custom type")
		template     = flag.String("template", "", "prompt template for custom type")
		out          = flag.String("out", "", "output file (default stdout)")
		dbPath       = flag.String("db", "", "SQLite database to record the run in (optional)")
	)
	flag.Parse()

	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	_ = godotenv.Load()

	root, err := filepath.Abs(*path)
	if err != nil {
		log.Fatalf("invalid path: %v", err)
	}

	client, err := llm.NewFromEnv()
	if err != nil {
		log.Fatalf("failed to initialize completion client: %v", err)
	}
	defer func() { _ = client.Close() }()

	var store storage.Store
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *dbPath != "" {
		sqlStore, err := storage.NewSQLiteStore(ctx, *dbPath)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer func() { _ = sqlStore.Close() }()
		store = sqlStore
	}

	opts := docgen.Options{
		DocType: docgen.DocType(*docType),
		Extract: extractor.Options{IncludeTests: *includeTests},
		Processing: types.ProcessingOptions{
			MaxChunkSize:   *maxChunkSize,
			Concurrency:    *concurrency,
			MaxTokens:      *maxTokens,
			Model:          *model,
			SystemPrompt:   *systemPrompt,
			PromptTemplate: *template,
			RequestTimeout: *timeout,
			OnProgress: func(completed, total int) {
				log.Printf("processed %d/%d chunks", completed, total)
			},
		},
	}

	gen := docgen.New(client, store)

	start := time.Now()
	res, err := gen.Generate(ctx, root, opts)
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}

	log.Printf("run %s: %s, %d files, %d chunks, %d failed, %s",
		res.RunID, res.Run.Status, res.Corpus.FileCount,
		res.Result.Metrics.TotalChunks, len(res.Result.FailedChunks()),
		time.Since(start).Round(time.Millisecond))

	if *out != "" {
		if err := os.WriteFile(*out, []byte(res.Result.CombinedResult), 0o644); err != nil {
			log.Fatalf("failed to write output: %v", err)
		}
		log.Printf("wrote %s", *out)
		return
	}
	fmt.Println(res.Result.CombinedResult)
}
