// Package testsupport builds WAV fixtures for package tests.
package testsupport

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"bookbind/internal/wavio"
)

// DefaultFormat is the descriptor most fixtures use.
var DefaultFormat = wavio.Format{Channels: 1, SampleWidth: 2, SampleRate: 22050}

// WriteWAV writes a valid PCM WAV file at path with payloadLen bytes of
// deterministic payload and returns the payload for later comparison.
func WriteWAV(t *testing.T, path string, format wavio.Format, payloadLen int) []byte {
	t.Helper()
	payload := make([]byte, payloadLen)
	for i := range payload {
		payload[i] = byte(i % 251)
	}

	var buf bytes.Buffer
	if err := wavio.WriteHeader(&buf, format, uint32(payloadLen)); err != nil {
		t.Fatal(err)
	}
	buf.Write(payload)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return payload
}

// WriteSegments writes n same-format segments named segment_1.wav .. segment_n.wav
// into dir and returns their paths in natural order.
func WriteSegments(t *testing.T, dir string, n int, format wavio.Format, payloadLen int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("segment_%d.wav", i))
		WriteWAV(t, path, format, payloadLen)
		paths = append(paths, path)
	}
	return paths
}
