// Package ffrunner spawns the external transcoder, streams its diagnostic
// output line-by-line to a caller-supplied sink, and maps exit status onto
// typed errors. Retry policy lives with callers; a failed run is reported,
// not repeated.
package ffrunner
