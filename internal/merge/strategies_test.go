package merge

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbind/internal/logging"
	"bookbind/internal/testsupport"
	"bookbind/internal/wavio"
)

const testChunkSize = 4 * 1024

func TestDirectMergeConcatenatesPayloads(t *testing.T) {
	dir := t.TempDir()
	var want bytes.Buffer
	paths := make([]string, 0, 3)
	for i, size := range []int{100, 1, 4097} {
		path := filepath.Join(dir, "seg"+string(rune('a'+i))+".wav")
		want.Write(testsupport.WriteWAV(t, path, testsupport.DefaultFormat, size))
		paths = append(paths, path)
	}
	output := filepath.Join(dir, "out.wav")

	format := testsupport.DefaultFormat
	if err := directMerge(context.Background(), segmentsFromPaths(paths), format, output, testChunkSize); err != nil {
		t.Fatal(err)
	}

	info, err := wavio.Probe(output)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Format.Equal(format) {
		t.Fatalf("output format = %s, want %s", info.Format, format)
	}
	if info.DataSize != int64(want.Len()) {
		t.Fatalf("declared payload = %d, want %d", info.DataSize, want.Len())
	}
	if got := readMergedPayload(t, output); !bytes.Equal(got, want.Bytes()) {
		t.Fatal("merged payload differs from source concatenation")
	}
}

func TestDirectMergeMissingSegmentAborts(t *testing.T) {
	dir := t.TempDir()
	paths := testsupport.WriteSegments(t, dir, 2, testsupport.DefaultFormat, 16)
	segments := segmentsFromPaths(paths)
	// Prime the format cache, then remove the file so the payload read fails.
	if _, err := segments[1].Info(); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(paths[1]); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.wav")

	err := directMerge(context.Background(), segments, testsupport.DefaultFormat, output, testChunkSize)
	var copyErr *StreamCopyError
	if !errors.As(err, &copyErr) {
		t.Fatalf("err = %v, want StreamCopyError", err)
	}
}

func TestDirectMergeCancellation(t *testing.T) {
	dir := t.TempDir()
	paths := testsupport.WriteSegments(t, dir, 2, testsupport.DefaultFormat, 64)
	output := filepath.Join(dir, "out.wav")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := directMerge(ctx, segmentsFromPaths(paths), testsupport.DefaultFormat, output, testChunkSize)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRawMergeSynthesizesHeader(t *testing.T) {
	dir := t.TempDir()
	var want bytes.Buffer
	paths := make([]string, 0, 3)
	for i, size := range []int{50, 4096, 7} {
		path := filepath.Join(dir, "seg"+string(rune('a'+i))+".wav")
		want.Write(testsupport.WriteWAV(t, path, testsupport.DefaultFormat, size))
		paths = append(paths, path)
	}
	output := filepath.Join(dir, "out.wav")

	included, err := rawMerge(context.Background(), logging.NewNop(), segmentsFromPaths(paths), testsupport.DefaultFormat, output, dir, testChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	if included != 3 {
		t.Fatalf("included = %d, want 3", included)
	}

	info, err := wavio.Probe(output)
	if err != nil {
		t.Fatalf("synthesized header rejected by probe: %v", err)
	}
	if info.DataOffset != wavio.HeaderSize {
		t.Fatalf("data offset = %d, want %d", info.DataOffset, wavio.HeaderSize)
	}
	if info.DataSize != int64(want.Len()) {
		t.Fatalf("declared payload = %d, want %d", info.DataSize, want.Len())
	}
	if !info.Format.Equal(testsupport.DefaultFormat) {
		t.Fatalf("format round trip = %s, want %s", info.Format, testsupport.DefaultFormat)
	}
	if got := readMergedPayload(t, output); !bytes.Equal(got, want.Bytes()) {
		t.Fatal("raw payload differs from source concatenation")
	}
}

func TestRawMergeSkipsUnreadableSegment(t *testing.T) {
	dir := t.TempDir()
	good1 := filepath.Join(dir, "seg1.wav")
	bad := filepath.Join(dir, "seg2.wav")
	good2 := filepath.Join(dir, "seg3.wav")
	p1 := testsupport.WriteWAV(t, good1, testsupport.DefaultFormat, 32)
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	p2 := testsupport.WriteWAV(t, good2, testsupport.DefaultFormat, 16)
	output := filepath.Join(dir, "out.wav")

	included, err := rawMerge(context.Background(), logging.NewNop(), segmentsFromPaths([]string{good1, bad, good2}), testsupport.DefaultFormat, output, dir, testChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	if included != 2 {
		t.Fatalf("included = %d, want 2", included)
	}
	want := append(append([]byte{}, p1...), p2...)
	if got := readMergedPayload(t, output); !bytes.Equal(got, want) {
		t.Fatal("raw payload must contain only the readable segments in order")
	}
}

func TestRawMergeAllUnreadableFails(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "seg1.wav")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.wav")

	if _, err := rawMerge(context.Background(), logging.NewNop(), segmentsFromPaths([]string{bad}), testsupport.DefaultFormat, output, dir, testChunkSize); err == nil {
		t.Fatal("raw merge with zero readable segments must fail")
	}
}

func TestRawMergeRemovesScratchFile(t *testing.T) {
	dir := t.TempDir()
	scratchDir := t.TempDir()
	paths := testsupport.WriteSegments(t, dir, 2, testsupport.DefaultFormat, 16)
	output := filepath.Join(dir, "out.wav")

	if _, err := rawMerge(context.Background(), logging.NewNop(), segmentsFromPaths(paths), testsupport.DefaultFormat, output, scratchDir, testChunkSize); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".bookbind-raw-") {
			t.Fatalf("scratch file %s left behind", entry.Name())
		}
	}
}

func TestBoundedMergeTruncatesToCap(t *testing.T) {
	dir := t.TempDir()
	paths := testsupport.WriteSegments(t, dir, 8, testsupport.DefaultFormat, 10)
	output := filepath.Join(dir, "out.wav")

	included, err := boundedMerge(context.Background(), logging.NewNop(), segmentsFromPaths(paths), testsupport.DefaultFormat, output, 5, testChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	if included != 5 {
		t.Fatalf("included = %d, want 5", included)
	}
	info, err := wavio.Probe(output)
	if err != nil {
		t.Fatal(err)
	}
	if info.DataSize != 5*10 {
		t.Fatalf("declared payload = %d, want %d", info.DataSize, 5*10)
	}
}

func TestBoundedMergeUnderCapKeepsAll(t *testing.T) {
	dir := t.TempDir()
	paths := testsupport.WriteSegments(t, dir, 3, testsupport.DefaultFormat, 10)
	output := filepath.Join(dir, "out.wav")

	included, err := boundedMerge(context.Background(), logging.NewNop(), segmentsFromPaths(paths), testsupport.DefaultFormat, output, 5, testChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	if included != 3 {
		t.Fatalf("included = %d, want 3", included)
	}
}

func TestBoundedMergeSkipsUnreadablePrefixSegment(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "seg1.wav")
	bad := filepath.Join(dir, "seg2.wav")
	payload := testsupport.WriteWAV(t, good, testsupport.DefaultFormat, 24)
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.wav")

	included, err := boundedMerge(context.Background(), logging.NewNop(), segmentsFromPaths([]string{good, bad}), testsupport.DefaultFormat, output, 5, testChunkSize)
	if err != nil {
		t.Fatal(err)
	}
	if included != 1 {
		t.Fatalf("included = %d, want 1", included)
	}
	if got := readMergedPayload(t, output); !bytes.Equal(got, payload) {
		t.Fatal("output payload must match the single readable segment")
	}
}

func TestBoundedMergeNoReadableSegments(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "seg1.wav")
	if err := os.WriteFile(bad, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.wav")

	if _, err := boundedMerge(context.Background(), logging.NewNop(), segmentsFromPaths([]string{bad}), testsupport.DefaultFormat, output, 5, testChunkSize); err == nil {
		t.Fatal("bounded merge with zero readable segments must fail")
	}
}
