// Package config loads, normalizes, and validates bookbind's TOML
// configuration. Defaults live in defaults.go; Load layers an optional config
// file over them, expands home-relative paths, and rejects unusable values
// before anything else starts.
package config
