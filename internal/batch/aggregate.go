package batch

import (
	"fmt"
	"strings"
	"time"

	"github.com/kmullins/repodoc/pkg/types"
)

// sectionSeparatorFormat labels each part of a multi-chunk document with
// its ordinal and the total count.
const sectionSeparatorFormat = "--- SECTION %d OF %d ---"

// errorMarkerFormat renders a failed chunk inline in the combined document
// so the span is visible for manual re-processing.
const errorMarkerFormat = "[PROCESSING FAILED for section %d: %s]"

// aggregate joins ordered chunk results into one document. A single result
// is returned verbatim with no added formatting; multiple results are each
// preceded by a labeled separator and joined with blank lines. Failed slots
// carry an inline error marker.
func aggregate(results []types.ChunkResult) string {
	if len(results) == 1 {
		return renderResult(results[0])
	}

	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf(sectionSeparatorFormat, i+1, len(results)) +
			"\n\n" + renderResult(r)
	}
	return strings.Join(parts, "\n\n")
}

func renderResult(r types.ChunkResult) string {
	if r.Success {
		return r.Output
	}
	return fmt.Sprintf(errorMarkerFormat, r.Index+1, r.Error)
}

// computeMetrics summarizes a finished batch. Input counts cover every
// attempted chunk; output counts cover successful completions only.
func computeMetrics(chunks []types.Chunk, results []types.ChunkResult, elapsed time.Duration) types.Metrics {
	var inputChars, outputChars int
	for _, c := range chunks {
		inputChars += c.Length
	}
	for _, r := range results {
		if r.Success {
			outputChars += len(r.Output)
		}
	}

	return types.Metrics{
		TotalChunks:          len(chunks),
		TotalInputChars:      inputChars,
		TotalOutputChars:     outputChars,
		EstimatedInputTokens: (inputChars + 3) / 4,
		ProcessingTimeMs:     elapsed.Milliseconds(),
	}
}
