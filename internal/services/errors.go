package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures from sox/ffmpeg invocations.
	ErrExternalTool = errors.New("external tool error")
	// ErrToolUnavailable marks a requested tool that is not installed.
	ErrToolUnavailable = errors.New("tool unavailable")
)

// ToolExecutionError reports a codec tool that launched but did not produce
// usable output: nonzero exit, launch failure, or timeout expiry.
type ToolExecutionError struct {
	Tool     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolExecutionError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.Err != nil && e.ExitCode == 0 {
		msg = fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	if detail := strings.TrimSpace(e.Stderr); detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, firstLine(detail))
	}
	return msg
}

func (e *ToolExecutionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrExternalTool
}

// Is lets errors.Is(err, ErrExternalTool) match regardless of the wrapped cause.
func (e *ToolExecutionError) Is(target error) bool {
	return target == ErrExternalTool
}

// ToolUnavailableError reports a tool that could not be found at all.
type ToolUnavailableError struct {
	Tool   string
	Detail string
}

func (e *ToolUnavailableError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s unavailable: %s", e.Tool, e.Detail)
	}
	return fmt.Sprintf("%s unavailable", e.Tool)
}

func (e *ToolUnavailableError) Unwrap() error { return ErrToolUnavailable }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
