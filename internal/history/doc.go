// Package history persists batch run records in SQLite. The engine core
// stays stateless; a Recorder subscribed to the event stream writes run and
// job rows as terminal events arrive, and the history command reads them
// back.
package history
