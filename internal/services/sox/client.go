// Package sox wraps the SoX command line tool for WAV concatenation. SoX
// accepts the full ordered input list as arguments followed by the output
// path, so no manifest file is needed.
package sox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

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

// Client wraps SoX CLI interactions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a SoX client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("sox binary required")
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
func (c *Client) Name() string { return "sox" }

// Concat merges the ordered inputs into output in a single blocking
// invocation: sox in1 .. inN out.
func (c *Client) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return errors.New("sox concat: no inputs")
	}
	if strings.TrimSpace(output) == "" {
		return errors.New("sox concat: output path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := make([]string, 0, len(inputs)+1)
	args = append(args, inputs...)
	args = append(args, output)

	stderr, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		return toolError(c.Name(), stderr, err)
	}
	return nil
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
