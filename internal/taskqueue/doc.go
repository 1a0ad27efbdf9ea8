// Package taskqueue provides the bounded-concurrency worker pool the engine
// admits transcode jobs through. It is deliberately minimal: FIFO admission,
// a runtime-adjustable limit, and per-task settlement with no priorities or
// cancellation of in-flight work.
package taskqueue
