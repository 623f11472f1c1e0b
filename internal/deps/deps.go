// Package deps reports the availability of the external codec tools bookbind
// can delegate merges to. Availability is re-probed per merge request: tool
// presence is process-external state that can change between runs.
package deps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external binary bookbind can use.
type Requirement struct {
	Name        string
	Command     string
	VersionArgs []string
	Description string
	Optional    bool
}

// Status reports the availability of a single requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Availability carries the per-request tool probe result through the merge
// call chain as an immutable value.
type Availability struct {
	Sox    Status
	FFmpeg Status
}

// Requirements returns the codec tools bookbind knows how to drive.
func Requirements(soxBinary, ffmpegBinary string) []Requirement {
	return []Requirement{
		{
			Name:        "SoX",
			Command:     soxBinary,
			VersionArgs: []string{"--version"},
			Description: "Concatenates large WAV collections",
			Optional:    true,
		},
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			VersionArgs: []string{"-version"},
			Description: "Concat-demuxer fallback for large WAV collections",
			Optional:    true,
		},
	}
}

// Probe checks both codec tools with a bounded-time invocation each. It never
// returns an error: an unreachable tool is simply reported unavailable.
func Probe(ctx context.Context, soxBinary, ffmpegBinary string, timeout time.Duration) Availability {
	reqs := Requirements(soxBinary, ffmpegBinary)
	return Availability{
		Sox:    probeOne(ctx, reqs[0], timeout),
		FFmpeg: probeOne(ctx, reqs[1], timeout),
	}
}

func probeOne(ctx context.Context, req Requirement, timeout time.Duration) Status {
	status := Status{
		Name:        req.Name,
		Command:     strings.TrimSpace(req.Command),
		Description: req.Description,
		Optional:    req.Optional,
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(status.Command); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		return status
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	err := exec.CommandContext(ctx, status.Command, req.VersionArgs...).Run()
	switch {
	case err == nil:
		status.Available = true
	case isExitError(err):
		// The binary exists and launched; a grumpy exit code still counts.
		status.Available = true
		status.Detail = err.Error()
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		status.Detail = "probe timed out"
	default:
		status.Detail = err.Error()
	}
	return status
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// CheckBinaries evaluates requirements by PATH lookup only, without invoking
// them. Used by status output where launching every tool is unnecessary.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
