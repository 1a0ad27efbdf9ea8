// Package config loads, normalizes, and validates the clipforge TOML
// configuration file.
package config
