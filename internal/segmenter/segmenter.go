package segmenter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kmullins/repodoc/pkg/types"
)

// FileMarkerFormat is the sentinel line the extractor emits before each
// file's content. Segment recognizes the same format when grouping whole
// files into chunks.
const FileMarkerFormat = "===== FILE: %s ====="

// markerRe matches one sentinel line. Anchored per line so file content
// containing "FILE:" mid-line is never mistaken for a boundary.
var markerRe = regexp.MustCompile(`(?m)^===== FILE: .+ =====$`)

// breakSearchDivisor bounds the backward search for a break point to the
// last quarter of the window. Breaking much earlier than the size limit
// wastes chunk capacity.
const breakSearchDivisor = 4

// Segment partitions corpus into ordered, size-bounded chunks. The
// partition is lossless: chunks are gap-free and non-overlapping, and
// concatenating their contents reproduces corpus exactly.
//
// When the corpus carries at least two file markers, whole files are
// greedily bin-packed so chunks respect file boundaries; a single file
// larger than maxChunkSize is split line-aware and its pieces spliced into
// the sequence in place. Otherwise the whole corpus is split line-aware.
//
// An empty corpus yields zero chunks. Any non-empty corpus no longer than
// maxChunkSize yields exactly one chunk equal to the input.
func Segment(corpus string, maxChunkSize int) ([]types.Chunk, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", types.ErrInvalidChunkSize, maxChunkSize)
	}
	if corpus == "" {
		return nil, nil
	}
	if len(corpus) <= maxChunkSize {
		return []types.Chunk{types.NewChunk(0, corpus)}, nil
	}

	var pieces []string
	markers := markerRe.FindAllStringIndex(corpus, -1)
	if len(markers) < 2 {
		pieces = splitLineAware(corpus, maxChunkSize)
	} else {
		pieces = packFiles(fileUnits(corpus, markers), maxChunkSize)
	}

	chunks := make([]types.Chunk, len(pieces))
	for i, p := range pieces {
		chunks[i] = types.NewChunk(i, p)
	}
	return chunks, nil
}

// fileUnits slices the corpus into whole-file spans. Each unit runs from
// the start of a marker line to the start of the next marker; anything
// before the first marker forms a leading unit. The units concatenate back
// to the corpus, which is what keeps the partition invariant intact.
func fileUnits(corpus string, markers [][]int) []string {
	var units []string
	if markers[0][0] > 0 {
		units = append(units, corpus[:markers[0][0]])
	}
	for i, m := range markers {
		end := len(corpus)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		units = append(units, corpus[m[0]:end])
	}
	return units
}

// packFiles greedily bins whole-file units into chunks of at most max
// bytes. A unit is appended to the current chunk unless that would
// overflow an already non-empty chunk. A unit that alone exceeds max is
// never force-fit: it is split line-aware and its pieces spliced into the
// output in order.
func packFiles(units []string, max int) []string {
	var out []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, unit := range units {
		if len(unit) > max {
			flush()
			out = append(out, splitLineAware(unit, max)...)
			continue
		}
		if cur.Len() > 0 && cur.Len()+len(unit) > max {
			flush()
		}
		cur.WriteString(unit)
	}
	flush()
	return out
}

// splitLineAware walks text emitting pieces of at most max bytes. The
// ideal break is at the size limit; the last quarter of the window is
// searched backward for a paragraph break, then a line break. With no
// acceptable break point the piece ends exactly at the limit, possibly
// mid-line. Every iteration advances the offset, so the walk terminates.
func splitLineAware(text string, max int) []string {
	var out []string
	offset := 0
	for offset < len(text) {
		if len(text)-offset <= max {
			out = append(out, text[offset:])
			break
		}

		window := text[offset : offset+max]
		searchFrom := max - max/breakSearchDivisor

		cut := max
		if i := strings.LastIndex(window, "\n\n"); i >= searchFrom {
			cut = i + 2
		} else if i := strings.LastIndex(window, "\n"); i >= searchFrom {
			cut = i + 1
		}

		out = append(out, window[:cut])
		offset += cut
	}
	return out
}
