//go:build !cgo_sqlite
// +build !cgo_sqlite

package storage

// This file is compiled by default, without CGO.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go implementation needs no C compiler and cross-compiles
// cleanly; run histories are small enough that its slower writes do not
// matter for typical use.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
