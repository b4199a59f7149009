// Package segmenter partitions an extracted source corpus into ordered,
// size-bounded chunks suitable for dispatch to a completion model.
//
// Segmentation is a pure function over the corpus string: no I/O, no
// concurrency, no shared state. Two strategies apply:
//
//   - Boundary-aware bin-packing: when the corpus carries at least two
//     file markers, whole files are greedily grouped into chunks so a
//     chunk never splits a file unless that file alone exceeds the size
//     bound.
//   - Line-aware splitting: corpora without enough markers (and oversized
//     single files) are split near the size limit, preferring paragraph
//     and line breaks found in the tail of each window.
//
// Both strategies preserve the partition invariant: chunks are gap-free,
// non-overlapping and concatenate back to the original corpus.
package segmenter
