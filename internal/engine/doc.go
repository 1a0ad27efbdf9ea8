// Package engine orchestrates batch transcode runs. Planners expand user
// selections into jobs, and the engine wires each job through argument
// construction, the external transcoder, and the atomic output commit,
// reporting lifecycle events on a typed stream.
package engine
