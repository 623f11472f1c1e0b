package wavio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

const (
	// HeaderSize is the byte length of the canonical PCM header this package writes.
	HeaderSize = 44
	// MaxDataSize is the largest payload representable by the 32-bit RIFF size field.
	MaxDataSize = int64(math.MaxUint32) - 36

	riffSizeOffset = 4
	dataSizeOffset = 40
)

// EncodeHeader builds a canonical 44-byte PCM header declaring dataSize
// payload bytes. All multi-byte fields are little-endian.
func EncodeHeader(format Format, dataSize uint32) []byte {
	header := make([]byte, HeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], dataSize+36)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkSize)
	binary.LittleEndian.PutUint16(header[20:22], pcmFormatTag)
	binary.LittleEndian.PutUint16(header[22:24], format.Channels)
	binary.LittleEndian.PutUint32(header[24:28], format.SampleRate)
	binary.LittleEndian.PutUint32(header[28:32], format.ByteRate())
	binary.LittleEndian.PutUint16(header[32:34], format.BlockAlign())
	binary.LittleEndian.PutUint16(header[34:36], format.BitsPerSample())
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)
	return header
}

// WriteHeader writes a canonical PCM header to w.
func WriteHeader(w io.Writer, format Format, dataSize uint32) error {
	if _, err := w.Write(EncodeHeader(format, dataSize)); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// Writer streams PCM payload into a WAV file. The header is written with zero
// sizes up front and patched with the real totals on Close, so callers can
// append payload without knowing the final length in advance.
type Writer struct {
	file      *os.File
	format    Format
	dataBytes int64
	closed    bool
}

// NewWriter creates path (truncating any existing file) and writes the
// placeholder header for the given format.
func NewWriter(path string, format Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav: %w", err)
	}
	if err := WriteHeader(f, format, 0); err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{file: f, format: format}, nil
}

// Write appends payload bytes after the header.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	w.dataBytes += int64(n)
	if err != nil {
		return n, fmt.Errorf("write wav payload: %w", err)
	}
	return n, nil
}

// BytesWritten reports the payload bytes appended so far.
func (w *Writer) BytesWritten() int64 {
	return w.dataBytes
}

// Close patches the declared RIFF and data sizes and closes the file.
// Payloads beyond MaxDataSize cannot be represented; Close reports an error
// rather than wrapping the 32-bit field.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.dataBytes > MaxDataSize {
		w.file.Close()
		return fmt.Errorf("payload %d bytes exceeds 32-bit wav size field", w.dataBytes)
	}

	var sizeField [4]byte
	binary.LittleEndian.PutUint32(sizeField[:], uint32(w.dataBytes)+36)
	if _, err := w.file.WriteAt(sizeField[:], riffSizeOffset); err != nil {
		w.file.Close()
		return fmt.Errorf("patch riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(sizeField[:], uint32(w.dataBytes))
	if _, err := w.file.WriteAt(sizeField[:], dataSizeOffset); err != nil {
		w.file.Close()
		return fmt.Errorf("patch data size: %w", err)
	}
	return w.file.Close()
}

// Abort closes the underlying file without patching sizes. The partial file is
// left on disk for the caller to discard or retry over.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
