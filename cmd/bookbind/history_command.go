package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"bookbind/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent merge runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "History journaling is disabled (history.enabled = false)")
				return nil
			}
			defer store.Close()

			runCtx, cancel := signalContext()
			defer cancel()
			entries, err := store.List(runCtx, limit)
			if err != nil {
				return err
			}
			printHistory(cmd, entries)
			return nil
		},
	}

	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keepDays int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop journal entries older than a retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "History journaling is disabled (history.enabled = false)")
				return nil
			}
			defer store.Close()

			runCtx, cancel := signalContext()
			defer cancel()
			cutoff := time.Now().AddDate(0, 0, -keepDays)
			removed, err := store.Prune(runCtx, cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %d days\n", removed, keepDays)
			return nil
		},
	}

	cmd.Flags().IntVar(&keepDays, "keep-days", 30, "Retention window in days")
	return cmd
}

func printHistory(cmd *cobra.Command, entries []history.Entry) {
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No merges recorded yet")
		return
	}

	headers := []string{"When", "Book", "Status", "Strategy", "Segments", "Dropped", "Duration"}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		status := "ok"
		switch {
		case !entry.Succeeded:
			status = "failed"
		case entry.SegmentsDropped > 0:
			status = "degraded"
		}
		rows = append(rows, []string{
			entry.CreatedAt.Local().Format("2006-01-02 15:04"),
			entry.Book,
			status,
			entry.Strategy,
			strconv.Itoa(entry.SegmentsIncluded),
			strconv.Itoa(entry.SegmentsDropped),
			entry.Duration.Round(time.Millisecond).String(),
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
}
