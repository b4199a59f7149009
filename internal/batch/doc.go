// Package batch dispatches corpus chunks to a completion client under a
// hard concurrency cap and reassembles the ordered results.
//
// # Wave Dispatch
//
// Chunks are processed in sequential waves of at most Concurrency
// requests. A wave is a join-all barrier: every request in it must settle
// (success or failure) before the next wave is issued. Total latency is
// therefore bounded below by ceil(totalChunks/concurrency) times the
// slowest chunk latency in the bottleneck wave; a slow chunk stalls its
// wave. Once a wave is in flight its requests cannot be aborted short of
// context cancellation, and there is no batch-level timeout.
//
// # Failure Isolation
//
// A chunk's completion failure is converted into an error value occupying
// that chunk's result slot; it never aborts the wave or the batch. Callers
// always receive a complete ProcessingResult, with failed spans marked
// inline in the combined document for manual re-processing. Only
// construction-time misconfiguration is returned as an error.
package batch
