// Package logging configures structured slog output for bookbind. It provides
// a console handler with key=value fields, a JSON handler for machine
// consumption, rotated file output, and helpers for component loggers and
// context-derived attributes.
package logging
