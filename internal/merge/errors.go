package merge

import (
	"errors"
	"fmt"

	"bookbind/internal/wavio"
)

// ErrNoSegments reports an empty merge request. Nothing can recover from it.
var ErrNoSegments = errors.New("no audio segments to merge")

// UnreadableFormatError reports a segment whose container header could not be
// parsed: truncated, not RIFF/WAVE, or not uncompressed PCM.
type UnreadableFormatError struct {
	Path string
	Err  error
}

func (e *UnreadableFormatError) Error() string {
	return fmt.Sprintf("unreadable audio format in %s: %v", e.Path, e.Err)
}

func (e *UnreadableFormatError) Unwrap() error { return e.Err }

// IncompatibleFormatError reports a segment whose descriptor differs from the
// reference format taken from the first segment.
type IncompatibleFormatError struct {
	Path     string
	Expected wavio.Format
	Actual   wavio.Format
}

func (e *IncompatibleFormatError) Error() string {
	return fmt.Sprintf("incompatible audio format in %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// StreamCopyError reports an input that could not be read mid-merge.
type StreamCopyError struct {
	Path string
	Err  error
}

func (e *StreamCopyError) Error() string {
	return fmt.Sprintf("stream copy failed for %s: %v", e.Path, e.Err)
}

func (e *StreamCopyError) Unwrap() error { return e.Err }

// IsTerminal reports whether err rules out every fallback strategy.
// Validation failures are terminal; strategy execution failures are not.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoSegments) {
		return true
	}
	var incompatible *IncompatibleFormatError
	if errors.As(err, &incompatible) {
		return true
	}
	var unreadable *UnreadableFormatError
	return errors.As(err, &unreadable)
}
