package segmenter

import (
	"fmt"

	"github.com/kmullins/repodoc/pkg/types"
)

// Annotate prefixes a chunk's content with a traceability header carrying
// its 1-based ordinal, the total chunk count, its character length and an
// estimated token count. The header is additive metadata for the request
// payload only; it never participates in the lossless-partition invariant.
func Annotate(c types.Chunk, total int) string {
	return fmt.Sprintf("[CHUNK %d OF %d: %d chars, ~%d tokens]\n%s",
		c.Index+1, total, c.Length, EstimateTokens(c.Content), c.Content)
}
