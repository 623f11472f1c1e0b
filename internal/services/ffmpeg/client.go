// Package ffmpeg wraps the FFmpeg concat demuxer for WAV concatenation. The
// ordered input list is written to a temporary manifest file which FFmpeg
// reads with stream copy, so no re-encoding takes place.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookbind/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stderr string, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithManifestDir places concat manifests in dir instead of alongside the output.
func WithManifestDir(dir string) Option {
	return func(c *Client) {
		if strings.TrimSpace(dir) != "" {
			c.manifestDir = dir
		}
	}
}

// Client wraps FFmpeg CLI interactions.
type Client struct {
	binary      string
	timeout     time.Duration
	manifestDir string
	exec        Executor
}

// New constructs an FFmpeg client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name returns the tool identifier used in outcomes and logs.
func (c *Client) Name() string { return "ffmpeg" }

// Concat merges the ordered inputs into output via the concat demuxer:
// ffmpeg -f concat -safe 0 -i <manifest> -c copy <output>. The manifest is
// removed whether or not the invocation succeeds.
func (c *Client) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.New("ffmpeg concat: no inputs")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("ffmpeg concat: output path required")
	}

	manifestPath, err := c.writeManifest(inputs, output)
	if err != nil {
		return err
	}
	defer os.Remove(manifestPath)

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"-f", "concat", "-safe", "0", "-i", manifestPath, "-c", "copy", output}
	stderr, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		return toolError(c.Name(), stderr, err)
	}
	return nil
}

// writeManifest emits one `file '<abs-path>'` line per input in order.
func (c *Client) writeManifest(inputs []string, output string) (string, error) {
	dir := c.manifestDir
	if dir == "" {
		dir = filepath.Dir(output)
	}
	path := filepath.Join(dir, fmt.Sprintf(".bookbind-concat-%s.txt", uuid.NewString()))

	var buf bytes.Buffer
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return "", fmt.Errorf("resolve input %q: %w", input, err)
		}
		buf.WriteString("file '")
		buf.WriteString(escapeManifestPath(abs))
		buf.WriteString("'\n")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write concat manifest: %w", err)
	}
	return path, nil
}

// escapeManifestPath escapes single quotes for the concat demuxer's quoting
// rules: ' closes the string, \' emits the quote, ' reopens it.
func escapeManifestPath(path string) string {
	return strings.ReplaceAll(path, `'`, `'\''`)
}

func toolError(tool, stderr string, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &services.ToolExecutionError{
			Tool:     tool,
			ExitCode: exitErr.ExitCode(),
			Stderr:   stderr,
		}
	}
	return &services.ToolExecutionError{Tool: tool, Stderr: stderr, Err: err}
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr bytes.Buffer
	cmd.Stdout = nil
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stderr.String(), fmt.Errorf("%w: %w", ctxErr, err)
		}
		return stderr.String(), err
	}
	return stderr.String(), nil
}
