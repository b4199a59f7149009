// Package mcp exposes the documentation generator over the Model Context
// Protocol on stdio. It registers four tools: generate_docs runs the full
// pipeline against a repository, list_runs and get_run inspect run history,
// and get_document returns a run's assembled document.
package mcp
