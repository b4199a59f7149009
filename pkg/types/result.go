package types

// Metrics summarizes a batch run. Every attempted chunk is counted,
// including failed ones.
type Metrics struct {
	TotalChunks          int   `json:"total_chunks"`
	TotalInputChars      int   `json:"total_input_chars"`
	TotalOutputChars     int   `json:"total_output_chars"`
	EstimatedInputTokens int   `json:"estimated_input_tokens"`
	ProcessingTimeMs     int64 `json:"processing_time_ms"`
}

// ProcessingResult is the complete outcome of one ProcessBatch call.
// Callers always receive a full result even under partial failure; failed
// spans are marked in-band in both ChunkResults and CombinedResult.
type ProcessingResult struct {
	// CombinedResult is the assembled document. For a single-chunk batch it
	// is that chunk's raw completion output with no added formatting.
	CombinedResult string

	// ChunkResults is ordered by original chunk index.
	ChunkResults []ChunkResult

	// Metrics reflects every attempted chunk.
	Metrics Metrics
}

// FailedChunks returns the indexes of chunks whose completion failed, in
// order, for callers that want to re-process them.
func (r *ProcessingResult) FailedChunks() []int {
	var failed []int
	for _, cr := range r.ChunkResults {
		if !cr.Success {
			failed = append(failed, cr.Index)
		}
	}
	return failed
}
