// Package services defines the error taxonomy shared by clipforge
// components. Sentinel markers classify failures (external tool, validation,
// configuration, timeout) so callers can report them without string matching.
package services
