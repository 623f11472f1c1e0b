package merge

import (
	"context"
	"fmt"
	"log/slog"

	"bookbind/internal/logging"
	"bookbind/internal/wavio"
)

// boundedMerge is the last resort: it merges at most cap segments from the
// front of the ordered list with the standard container writer, which is safe
// under the cap. Unreadable segments are skipped so the strategy succeeds
// whenever at least one segment can be read. Returns the count actually
// included.
func boundedMerge(ctx context.Context, logger *slog.Logger, segments []*Segment, format wavio.Format, outputPath string, cap, chunkSize int) (int, error) {
	prefix := segments
	if len(prefix) > cap {
		prefix = prefix[:cap]
	}

	writer, err := wavio.NewWriter(outputPath, format)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, chunkSize)
	included := 0
	for _, segment := range prefix {
		written, err := copySegmentPayload(ctx, writer, segment, buf)
		if err != nil {
			if ctx.Err() != nil {
				writer.Abort()
				return 0, ctx.Err()
			}
			if written > 0 {
				// Partial payload already landed in the output; skipping now
				// would desynchronize the declared size from real content.
				writer.Abort()
				return 0, err
			}
			logger.Warn("skipping unreadable segment",
				logging.String("segment", segment.Path),
				logging.Error(err),
			)
			continue
		}
		included++
	}
	if included == 0 {
		writer.Abort()
		return 0, fmt.Errorf("bounded merge: no segment payload could be read")
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}
	return included, nil
}
