// Package ffprobe wraps the probe companion binary and exposes the stream
// dimensions and durations the orchestrators feed into graph construction.
package ffprobe
