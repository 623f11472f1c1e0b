package merge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bookbind/internal/logging"
)

// CleanupSources deletes the WAV files in inputDir after a successful merge.
// The output file is protected by absolute-path comparison when it lives in
// the same folder. Individual delete failures are logged and do not abort the
// batch. Returns the number of files removed.
func CleanupSources(logger *slog.Logger, inputDir, outputPath string) (int, error) {
	outputAbs, err := filepath.Abs(outputPath)
	if err != nil {
		return 0, fmt.Errorf("resolve output path: %w", err)
	}

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return 0, fmt.Errorf("read segment directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".wav") {
			continue
		}

		path := filepath.Join(inputDir, name)
		abs, err := filepath.Abs(path)
		if err != nil {
			logger.Warn("could not resolve segment path", logging.String("segment", path), logging.Error(err))
			continue
		}
		if abs == outputAbs {
			continue
		}

		if err := os.Remove(abs); err != nil {
			logger.Warn("could not delete source segment", logging.String("segment", abs), logging.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
