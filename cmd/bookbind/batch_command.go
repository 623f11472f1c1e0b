package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bookbind/internal/batch"
	"bookbind/internal/config"
	"bookbind/internal/merge"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var workers int
	var forceTool string
	var deleteSources bool

	cmd := &cobra.Command{
		Use:   "batch <input-root>",
		Short: "Merge every book directory under a root concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			inputRoot, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve input root: %w", err)
			}
			targetDir := cfg.Paths.OutputDir
			if cmd.Flags().Changed("output-dir") {
				if targetDir, err = config.ExpandPath(outputDir); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}
			poolSize := cfg.Batch.Workers
			if cmd.Flags().Changed("workers") {
				poolSize = workers
			}

			engine, err := ctx.newEngine()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			opts := merge.Options{
				ForceTool:     cfg.Merge.ForceTool,
				DeleteSources: cfg.Merge.DeleteSources,
			}
			if cmd.Flags().Changed("force-tool") {
				opts.ForceTool = forceTool
			}
			if cmd.Flags().Changed("delete-sources") {
				opts.DeleteSources = deleteSources
			}

			runCtx, cancel := signalContext()
			defer cancel()

			started := time.Now()
			results, err := batch.New(engine, poolSize, logger).Run(runCtx, inputRoot, targetDir, opts)
			if err != nil {
				return err
			}
			recordBatchHistory(ctx, results, time.Since(started))

			printBatchResults(cmd, results)
			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d books failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for merged files (defaults to output_dir)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent book merges (defaults to batch.workers)")
	cmd.Flags().StringVar(&forceTool, "force-tool", "", "Prefer a specific external tool: sox or ffmpeg")
	cmd.Flags().BoolVar(&deleteSources, "delete-sources", false, "Delete segment files after each successful merge")
	return cmd
}

func printBatchResults(cmd *cobra.Command, results []batch.Result) {
	headers := []string{"Book", "Status", "Strategy", "Segments", "Dropped"}
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			rows = append(rows, []string{res.Book, "failed", "", "", ""})
			continue
		}
		status := "ok"
		if res.Outcome.Degraded() {
			status = "degraded"
		}
		rows = append(rows, []string{
			res.Book,
			status,
			string(res.Outcome.Strategy),
			strconv.Itoa(res.Outcome.SegmentsIncluded),
			strconv.Itoa(res.Outcome.SegmentsDropped),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))

	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Book, res.Err)
		}
	}
}

func recordBatchHistory(ctx *commandContext, results []batch.Result, elapsed time.Duration) {
	perBook := elapsed
	if len(results) > 0 {
		perBook = elapsed / time.Duration(len(results))
	}
	for _, res := range results {
		recordHistory(ctx, historyEntry(res.Book, res.Outcome.OutputPath, res.Outcome, res.Err, perBook))
	}
}
