package types

// Chunk is a contiguous slice of the corpus produced by the segmenter.
// Chunks are emitted in corpus order, gap-free and non-overlapping:
// concatenating the Content of every chunk reproduces the corpus exactly.
type Chunk struct {
	// Index is the 0-based position of the chunk in corpus order.
	Index int

	// Content is the raw corpus substring. No metadata is ever mixed in;
	// annotation headers are added separately at dispatch time.
	Content string

	// Length is len(Content) in bytes.
	Length int
}

// NewChunk builds a chunk and fills in its length.
func NewChunk(index int, content string) Chunk {
	return Chunk{Index: index, Content: content, Length: len(content)}
}

// ChunkResult holds the outcome of dispatching one chunk to the completion
// client. Exactly one of Output or Error is meaningful, discriminated by
// Success. Results are immutable once the dispatcher has set them.
type ChunkResult struct {
	// Index matches the chunk's Index; chunkResults[i] always corresponds
	// to chunks[i] regardless of wave completion timing.
	Index int

	// Output is the completion text for a successful chunk.
	Output string

	// Error is a descriptive message for a failed chunk. Per-chunk failures
	// are captured here rather than propagated; one bad chunk never aborts
	// the wave or the batch.
	Error string

	// Success reports whether the completion call succeeded.
	Success bool
}
