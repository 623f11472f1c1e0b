package merge

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"bookbind/internal/fileutil"
	"bookbind/internal/logging"
	"bookbind/internal/wavio"
)

// rawMerge bypasses the container writer's 32-bit size bookkeeping: every
// segment's payload streams into a scratch file first, then the header is
// synthesized from the scratch file's final size and the payload appended
// after it. Individual unreadable segments are skipped, not fatal. Returns
// the number of segments actually included.
func rawMerge(ctx context.Context, logger *slog.Logger, segments []*Segment, format wavio.Format, outputPath, scratchDir string, chunkSize int) (int, error) {
	if scratchDir == "" {
		scratchDir = filepath.Dir(outputPath)
	}
	scratchPath := filepath.Join(scratchDir, fmt.Sprintf(".bookbind-raw-%s.pcm", uuid.NewString()))
	defer os.Remove(scratchPath)

	included, err := writeScratchPayload(ctx, logger, segments, scratchPath, chunkSize)
	if err != nil {
		return 0, err
	}
	if included == 0 {
		return 0, fmt.Errorf("raw merge: no segment payload could be read")
	}

	scratchInfo, err := os.Stat(scratchPath)
	if err != nil {
		return 0, fmt.Errorf("stat scratch payload: %w", err)
	}
	payloadSize := scratchInfo.Size()
	if payloadSize > wavio.MaxDataSize {
		// The 32-bit size field cannot represent this payload; most decoders
		// read to EOF anyway, so proceed with a truncated declared size.
		logger.Warn("payload exceeds 32-bit wav size field, declared size will be wrong",
			logging.Int64("payload_bytes", payloadSize),
			logging.Int64("max_declared", wavio.MaxDataSize),
		)
	}

	if err := assembleOutput(ctx, scratchPath, outputPath, format, payloadSize, chunkSize); err != nil {
		return 0, err
	}
	return included, nil
}

func writeScratchPayload(ctx context.Context, logger *slog.Logger, segments []*Segment, scratchPath string, chunkSize int) (int, error) {
	scratch, err := os.Create(scratchPath)
	if err != nil {
		return 0, fmt.Errorf("create scratch payload: %w", err)
	}
	defer scratch.Close()

	buf := make([]byte, chunkSize)
	included := 0
	for _, segment := range segments {
		if _, err := copySegmentPayload(ctx, scratch, segment, buf); err != nil {
			if ctx.Err() != nil {
				return included, ctx.Err()
			}
			// Best effort: skip the unreadable segment and keep going.
			logger.Warn("skipping unreadable segment",
				logging.String("segment", segment.Path),
				logging.Error(err),
			)
			continue
		}
		included++
	}
	if err := scratch.Close(); err != nil {
		return included, fmt.Errorf("close scratch payload: %w", err)
	}
	return included, nil
}

func assembleOutput(ctx context.Context, scratchPath, outputPath string, format wavio.Format, payloadSize int64, chunkSize int) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	if err := wavio.WriteHeader(out, format, uint32(payloadSize)); err != nil {
		return err
	}

	scratch, err := os.Open(scratchPath)
	if err != nil {
		return fmt.Errorf("open scratch payload: %w", err)
	}
	defer scratch.Close()

	if _, err := fileutil.CopyChunked(ctx, out, scratch, make([]byte, chunkSize)); err != nil {
		return fmt.Errorf("append payload: %w", err)
	}
	return out.Close()
}
