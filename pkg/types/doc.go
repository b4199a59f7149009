// Package types provides shared type definitions for the repodoc pipeline.
//
// This package defines the domain types that flow between the segmenter,
// the batch dispatcher and the result aggregator.
//
// # Core Types
//
// Chunk is a contiguous, size-bounded slice of an extracted corpus:
//
//	chunk := types.Chunk{
//	    Index:   0,
//	    Content: corpus[:4000],
//	    Length:  4000,
//	}
//
// ProcessingOptions configures a batch run:
//
//	opts := types.DefaultProcessingOptions()
//	opts.Concurrency = 3
//	opts.PromptTemplate = "Document part {{chunkIndex}}/{{totalChunks}}:\n{{content}}"
//
// ProcessingResult carries the combined document, the ordered per-chunk
// results and the run metrics. All values are local to a single ProcessBatch
// call; nothing is shared across calls, so concurrent batch runs cannot
// interfere with each other.
package types
