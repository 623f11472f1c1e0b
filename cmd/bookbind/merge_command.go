package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bookbind/internal/config"
	"bookbind/internal/history"
	"bookbind/internal/merge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var forceTool string
	var deleteSources bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "merge <segment-dir>",
		Short: "Merge one directory of WAV segments into a single file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			inputDir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve segment directory: %w", err)
			}
			output, err := resolveOutputPath(cfg, inputDir, outputPath)
			if err != nil {
				return err
			}

			segments, err := merge.CollectSegments(inputDir)
			if err != nil {
				return err
			}

			engine, err := ctx.newEngine()
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
			outcome, mergeErr := engine.Merge(runCtx, merge.Request{
				Segments:   segments,
				OutputPath: output,
				Options:    opts,
			})
			recordHistory(ctx, historyEntry(filepath.Base(inputDir), output, outcome, mergeErr, time.Since(started)))
			if mergeErr != nil {
				return mergeErr
			}

			printOutcome(cmd, outcome)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Merged file destination (defaults to <output_dir>/<dir-name>.wav)")
	cmd.Flags().StringVar(&forceTool, "force-tool", "", "Prefer a specific external tool: sox or ffmpeg")
	cmd.Flags().BoolVar(&deleteSources, "delete-sources", false, "Delete segment files after a successful merge")
	return cmd
}

func resolveOutputPath(cfg *config.Config, inputDir, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return config.ExpandPath(flagValue)
	}
	name := filepath.Base(filepath.Clean(inputDir)) + ".wav"
	return filepath.Join(cfg.Paths.OutputDir, name), nil
}

func printOutcome(cmd *cobra.Command, outcome merge.Outcome) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	kind := statusOK
	detail := fmt.Sprintf("%d segments via %s", outcome.SegmentsIncluded, outcome.Strategy)
	if outcome.Degraded() {
		kind = statusWarn
		detail = fmt.Sprintf("%d segments via %s, %d dropped", outcome.SegmentsIncluded, outcome.Strategy, outcome.SegmentsDropped)
	}
	fmt.Fprintln(out, renderStatusLine("Merge", kind, detail, colorize))
	fmt.Fprintln(out, renderStatusLine("Output", statusInfo, outcome.OutputPath, colorize))
}

func historyEntry(book, output string, outcome merge.Outcome, mergeErr error, elapsed time.Duration) history.Entry {
	entry := history.Entry{
		Book:             book,
		OutputPath:       output,
		Strategy:         string(outcome.Strategy),
		SegmentsIncluded: outcome.SegmentsIncluded,
		SegmentsDropped:  outcome.SegmentsDropped,
		Duration:         elapsed,
		Succeeded:        mergeErr == nil,
	}
	if mergeErr != nil {
		entry.Detail = mergeErr.Error()
	} else if outcome.Degraded() {
		entry.Detail = "truncated oversized collection"
	}
	return entry
}

// recordHistory journals one run. Journal trouble never fails the command.
func recordHistory(ctx *commandContext, entry history.Entry) {
	store, err := ctx.openHistory()
	if err != nil || store == nil {
		return
	}
	defer store.Close()
	if _, err := store.Record(context.Background(), entry); err != nil {
		if logger, logErr := ctx.ensureLogger(); logErr == nil {
			logger.Warn("history record failed", "error", err)
		}
	}
}
