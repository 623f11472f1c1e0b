package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbind/internal/config"
	"bookbind/internal/testsupport"
	"bookbind/internal/wavio"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
output_dir = %q
work_dir = %q
log_dir = %q
state_dir = %q

[logging]
format = "console"
level = "error"
`,
		filepath.Join(base, "out"),
		filepath.Join(base, "work"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "state"),
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMergeCommandEndToEnd(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	segmentDir := filepath.Join(base, "dune")
	if err := os.MkdirAll(segmentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteSegments(t, segmentDir, 3, testsupport.DefaultFormat, 64)

	output, err := runCLI(t, "--config", configPath, "merge", segmentDir)
	if err != nil {
		t.Fatalf("merge command failed: %v\n%s", err, output)
	}

	mergedPath := filepath.Join(base, "out", "dune.wav")
	info, err := wavio.Probe(mergedPath)
	if err != nil {
		t.Fatalf("merged output unreadable: %v", err)
	}
	if info.DataSize != 3*64 {
		t.Fatalf("merged payload = %d, want %d", info.DataSize, 3*64)
	}
	if !strings.Contains(output, "Merge") {
		t.Fatalf("missing status output:\n%s", output)
	}
}

func TestMergeCommandRecordsHistory(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	segmentDir := filepath.Join(base, "hyperion")
	if err := os.MkdirAll(segmentDir, 0o755); err != nil {
		t.Fatal(err)
	}
	testsupport.WriteSegments(t, segmentDir, 2, testsupport.DefaultFormat, 32)

	if out, err := runCLI(t, "--config", configPath, "merge", segmentDir); err != nil {
		t.Fatalf("merge command failed: %v\n%s", err, out)
	}

	output, err := runCLI(t, "--config", configPath, "history")
	if err != nil {
		t.Fatalf("history command failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "hyperion") {
		t.Fatalf("history output missing book:\n%s", output)
	}
	if !strings.Contains(output, "direct") {
		t.Fatalf("history output missing strategy:\n%s", output)
	}
}

func TestBatchCommandEndToEnd(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	root := filepath.Join(base, "books")
	for _, book := range []string{"alpha", "beta"} {
		dir := filepath.Join(root, book)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		testsupport.WriteSegments(t, dir, 2, testsupport.DefaultFormat, 16)
	}

	output, err := runCLI(t, "--config", configPath, "batch", root)
	if err != nil {
		t.Fatalf("batch command failed: %v\n%s", err, output)
	}
	for _, book := range []string{"alpha", "beta"} {
		if _, err := os.Stat(filepath.Join(base, "out", book+".wav")); err != nil {
			t.Fatalf("missing merged output for %s: %v", book, err)
		}
		if !strings.Contains(output, book) {
			t.Fatalf("batch table missing %s:\n%s", book, output)
		}
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "bookbind", "config.toml")
	output, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if out, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatalf("second init without --overwrite must fail\n%s", out)
	}
	if out, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite failed: %v\n%s", err, out)
	}
}

func TestResolveOutputPathDefaultsToDirName(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	got, err := resolveOutputPath(cfg, "/audio/in/dune", "")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(base, "out", "dune.wav")
	if got != want {
		t.Fatalf("output path = %s, want %s", got, want)
	}
}

func TestProbeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg.wav")
	testsupport.WriteWAV(t, path, testsupport.DefaultFormat, 128)

	output, err := runCLI(t, "probe", path)
	if err != nil {
		t.Fatalf("probe command failed: %v\n%s", err, output)
	}
	for _, want := range []string{"channels", "22050", "128 bytes"} {
		if !strings.Contains(output, want) {
			t.Fatalf("probe output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderStatusLine(t *testing.T) {
	line := renderStatusLine("SoX", statusWarn, "not found", false)
	if !strings.Contains(line, "[WARN] not found") || !strings.Contains(line, "SoX:") {
		t.Fatalf("unexpected status line %q", line)
	}
	colored := renderStatusLine("SoX", statusOK, "", true)
	if !strings.Contains(colored, ansiGreen) {
		t.Fatalf("colorized line missing escape code %q", colored)
	}
}

func TestRenderTableShape(t *testing.T) {
	out := renderTable(
		[]string{"Book", "Segments"},
		[][]string{{"dune", "12"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	if !strings.Contains(out, "dune") || !strings.Contains(out, "Segments") {
		t.Fatalf("table output incomplete:\n%s", out)
	}
}
