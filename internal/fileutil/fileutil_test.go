package fileutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyChunked(t *testing.T) {
	src := bytes.NewReader(bytes.Repeat([]byte{0x5A}, 3000))
	var dst bytes.Buffer

	n, err := CopyChunked(context.Background(), &dst, src, make([]byte, 1024))
	if err != nil {
		t.Fatal(err)
	}
	if n != 3000 {
		t.Fatalf("written: got %d, want 3000", n)
	}
	if dst.Len() != 3000 {
		t.Fatalf("dst length: got %d", dst.Len())
	}
}

func TestCopyChunkedCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := bytes.NewReader(make([]byte, 10))
	var dst bytes.Buffer
	if _, err := CopyChunked(ctx, &dst, src, make([]byte, 4)); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("payload")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	if err := os.WriteFile(src, []byte("move me"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := MoveFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still present after move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "move me" {
		t.Fatalf("content mismatch: %q", got)
	}
}
