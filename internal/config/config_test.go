package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Merge.LargeCollectionThreshold != 100 {
		t.Fatalf("large collection threshold: got %d", cfg.Merge.LargeCollectionThreshold)
	}
	if cfg.Merge.FallbackSegmentCap != 500 {
		t.Fatalf("fallback segment cap: got %d", cfg.Merge.FallbackSegmentCap)
	}
	if cfg.Merge.ChunkSizeBytes != 1<<20 {
		t.Fatalf("chunk size: got %d", cfg.Merge.ChunkSizeBytes)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config")
	}
	if cfg.Tools.SoxBinary != "sox" || cfg.Tools.FFmpegBinary != "ffmpeg" {
		t.Fatalf("tool defaults not applied: %+v", cfg.Tools)
	}
}

func TestLoadOverridesAndExpansion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "~/books/out"

[merge]
large_collection_threshold = 50
force_tool = "SOX"

[batch]
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Merge.LargeCollectionThreshold != 50 {
		t.Fatalf("threshold override lost: %d", cfg.Merge.LargeCollectionThreshold)
	}
	if cfg.Merge.ForceTool != "sox" {
		t.Fatalf("force_tool not lowercased: %q", cfg.Merge.ForceTool)
	}
	if cfg.Batch.Workers != 4 {
		t.Fatalf("workers override lost: %d", cfg.Batch.Workers)
	}
	if strings.HasPrefix(cfg.Paths.OutputDir, "~") {
		t.Fatalf("output_dir not expanded: %q", cfg.Paths.OutputDir)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad force_tool", "[merge]\nforce_tool = \"lame\"\n"},
		{"bad threshold", "[merge]\nlarge_collection_threshold = -1\n"},
		{"bad workers", "[batch]\nworkers = 0\n"},
		{"bad log format", "[logging]\nformat = \"yaml\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, _, _, err := Load(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatal(err)
	}
	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("sample config not found after create")
	}
	if cfg.Merge.FallbackSegmentCap != 500 {
		t.Fatalf("sample config diverges from defaults: %+v", cfg.Merge)
	}
}

func TestHistoryDBPath(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatal(err)
	}
	if filepath.Base(cfg.HistoryDBPath()) != "history.db" {
		t.Fatalf("unexpected history path: %q", cfg.HistoryDBPath())
	}
}
