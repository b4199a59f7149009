// Package docgen orchestrates documentation generation: it extracts a
// repository into a single marked corpus, runs it through the batch
// dispatcher with a preset prompt pair, and persists the run.
package docgen
