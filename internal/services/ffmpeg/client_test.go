package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbind/internal/services"
)

type fakeExecutor struct {
	binary       string
	args         []string
	manifestSeen string
	stderr       string
	err          error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) (string, error) {
	f.binary = binary
	f.args = args
	// The manifest must exist while the tool runs.
	for i, arg := range args {
		if arg == "-i" && i+1 < len(args) {
			raw, err := os.ReadFile(args[i+1])
			if err != nil {
				return "", err
			}
			f.manifestSeen = string(raw)
		}
	}
	return f.stderr, f.err
}

func TestConcatCommandShape(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{}
	client, err := New("ffmpeg", 0, WithExecutor(exec), WithManifestDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	output := filepath.Join(dir, "out.wav")
	if err := client.Concat(context.Background(), []string{"a.wav", "b.wav"}, output); err != nil {
		t.Fatal(err)
	}

	if exec.binary != "ffmpeg" {
		t.Fatalf("binary: got %q", exec.binary)
	}
	if len(exec.args) != 9 {
		t.Fatalf("args: got %v", exec.args)
	}
	if exec.args[0] != "-f" || exec.args[1] != "concat" ||
		exec.args[2] != "-safe" || exec.args[3] != "0" ||
		exec.args[4] != "-i" ||
		exec.args[6] != "-c" || exec.args[7] != "copy" ||
		exec.args[8] != output {
		t.Fatalf("unexpected argument shape: %v", exec.args)
	}
}

func TestConcatManifestContents(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{}
	client, err := New("ffmpeg", 0, WithExecutor(exec), WithManifestDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	if err := client.Concat(context.Background(), []string{"a.wav", "b.wav"}, filepath.Join(dir, "out.wav")); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(exec.manifestSeen), "\n")
	if len(lines) != 2 {
		t.Fatalf("manifest lines: got %d: %q", len(lines), exec.manifestSeen)
	}
	absA, _ := filepath.Abs("a.wav")
	if lines[0] != "file '"+absA+"'" {
		t.Fatalf("manifest line: got %q", lines[0])
	}
}

func TestConcatManifestRemovedAfterRun(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{err: errors.New("exit status 1")}
	client, err := New("ffmpeg", 0, WithExecutor(exec), WithManifestDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	_ = client.Concat(context.Background(), []string{"a.wav"}, filepath.Join(dir, "out.wav"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".bookbind-concat-") {
			t.Fatalf("manifest left behind: %s", entry.Name())
		}
	}
}

func TestConcatFailureWrapsToolError(t *testing.T) {
	dir := t.TempDir()
	exec := &fakeExecutor{stderr: "Invalid data found", err: errors.New("exit status 1")}
	client, err := New("ffmpeg", 0, WithExecutor(exec), WithManifestDir(dir))
	if err != nil {
		t.Fatal(err)
	}

	err = client.Concat(context.Background(), []string{"a.wav"}, filepath.Join(dir, "out.wav"))
	var toolErr *services.ToolExecutionError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolExecutionError, got %T", err)
	}
	if toolErr.Tool != "ffmpeg" {
		t.Fatalf("tool: got %q", toolErr.Tool)
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatal("error not classified as external tool failure")
	}
}

func TestEscapeManifestPath(t *testing.T) {
	got := escapeManifestPath("/tmp/it's here.wav")
	want := `/tmp/it'\''s here.wav`
	if got != want {
		t.Fatalf("escape: got %q, want %q", got, want)
	}
}
