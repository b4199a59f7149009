// Package storage persists documentation generation runs in SQLite.
//
// Each run stores its metadata and metrics in the runs table, the
// assembled document in the documents table, and the per-chunk outcomes
// in chunk_results. Two SQLite drivers are supported via build tags:
// the default pure-Go driver (modernc.org/sqlite) requires no cgo,
// while the cgo_sqlite tag selects mattn/go-sqlite3.
package storage
