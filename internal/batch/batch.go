// Package batch merges many books concurrently. Each immediate subdirectory
// of the input root that contains WAV segments is one book; its merged output
// lands in the output directory under the book's name.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"bookbind/internal/logging"
	"bookbind/internal/merge"
	"bookbind/internal/naturalsort"
)

// Merger is the single-book merge capability the runner fans out over.
type Merger interface {
	Merge(ctx context.Context, req merge.Request) (merge.Outcome, error)
}

// Result pairs one book with its merge outcome or failure.
type Result struct {
	Book    string
	Outcome merge.Outcome
	Err     error
}

// Runner executes batch merges with bounded concurrency.
type Runner struct {
	logger  *slog.Logger
	merger  Merger
	workers int
}

// New constructs a runner. Workers below one are clamped to serial execution.
func New(merger Merger, workers int, logger *slog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		logger:  logging.NewComponentLogger(logger, "batch"),
		merger:  merger,
		workers: workers,
	}
}

// DiscoverBooks lists the subdirectories of root that contain at least one
// WAV segment, in natural order.
func DiscoverBooks(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read batch root: %w", err)
	}

	var books []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		segments, err := merge.CollectSegments(filepath.Join(root, entry.Name()))
		if err != nil || len(segments) == 0 {
			continue
		}
		books = append(books, entry.Name())
	}
	naturalsort.Sort(books)
	return books, nil
}

// Run merges every book found under inputRoot into outputDir. Individual book
// failures are captured per result and never abort sibling books; only
// context cancellation stops the batch early. Results follow the book
// discovery order.
func (r *Runner) Run(ctx context.Context, inputRoot, outputDir string, opts merge.Options) ([]Result, error) {
	books, err := DiscoverBooks(inputRoot)
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, fmt.Errorf("no books with segments under %s", inputRoot)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	results := make([]Result, len(books))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.workers)

	for i, book := range books {
		i, book := i, book
		results[i] = Result{Book: book}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				results[i].Err = err
				return err
			}

			bookCtx := logging.WithBook(groupCtx, book)
			logger := logging.WithContext(bookCtx, r.logger)

			segments, err := merge.CollectSegments(filepath.Join(inputRoot, book))
			if err != nil {
				results[i].Err = err
				logger.Warn("book skipped", logging.Error(err))
				return nil
			}

			outcome, err := r.merger.Merge(bookCtx, merge.Request{
				Segments:   segments,
				OutputPath: filepath.Join(outputDir, book+".wav"),
				Options:    opts,
			})
			if err != nil {
				results[i].Err = err
				logger.Warn("book merge failed", logging.Error(err))
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				return nil
			}
			results[i].Outcome = outcome
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
