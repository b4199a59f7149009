// Package extractor turns a directory tree of source files into a single
// marked corpus string for segmentation.
//
// Each extracted file is preceded by a sentinel line in the format the
// segmenter recognizes, so downstream chunking can respect file
// boundaries. Extraction is deterministic: files are concatenated in
// sorted relative-path order.
package extractor
