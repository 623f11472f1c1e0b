package merge

import (
	"context"
	"io"
	"os"

	"bookbind/internal/fileutil"
	"bookbind/internal/wavio"
)

// directMerge streams every segment's payload into a container writer at
// outputPath. Memory stays bounded by the chunk buffer regardless of total
// size. A failed input aborts with StreamCopyError, leaving the partial file
// for the caller's fallback handling.
func directMerge(ctx context.Context, segments []*Segment, format wavio.Format, outputPath string, chunkSize int) error {
	writer, err := wavio.NewWriter(outputPath, format)
	if err != nil {
		return err
	}

	buf := make([]byte, chunkSize)
	for _, segment := range segments {
		if _, err := copySegmentPayload(ctx, writer, segment, buf); err != nil {
			writer.Abort()
			return err
		}
	}
	return writer.Close()
}

// copySegmentPayload appends one segment's payload bytes to dst, reporting how
// many bytes landed before any failure.
func copySegmentPayload(ctx context.Context, dst io.Writer, segment *Segment, buf []byte) (int64, error) {
	info, err := segment.Info()
	if err != nil {
		return 0, err
	}

	f, err := os.Open(segment.Path)
	if err != nil {
		return 0, &StreamCopyError{Path: segment.Path, Err: err}
	}
	defer f.Close()

	if _, err := f.Seek(info.DataOffset, io.SeekStart); err != nil {
		return 0, &StreamCopyError{Path: segment.Path, Err: err}
	}

	payload := io.LimitReader(f, info.DataSize)
	written, err := fileutil.CopyChunked(ctx, dst, payload, buf)
	if err != nil {
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		return written, &StreamCopyError{Path: segment.Path, Err: err}
	}
	return written, nil
}
