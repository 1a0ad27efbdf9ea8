// Package naming turns arbitrary user and source strings into
// cross-platform-legal, byte-budgeted filename fragments.
package naming
