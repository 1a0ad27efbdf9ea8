// Package logging builds the slog loggers used throughout clipforge and
// provides the shared attribute helpers and field-name constants.
package logging
