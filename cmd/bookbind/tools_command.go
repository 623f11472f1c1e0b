package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookbind/internal/deps"
)

func newToolsCommand(ctx *commandContext) *cobra.Command {
	var launch bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Report availability of the external codec tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			requirements := deps.Requirements(cfg.Tools.SoxBinary, cfg.Tools.FFmpegBinary)
			var statuses []deps.Status
			if launch {
				runCtx, cancel := signalContext()
				defer cancel()
				avail := deps.Probe(runCtx, cfg.Tools.SoxBinary, cfg.Tools.FFmpegBinary,
					time.Duration(cfg.Tools.ProbeTimeoutSeconds)*time.Second)
				statuses = []deps.Status{avail.Sox, avail.FFmpeg}
			} else {
				statuses = deps.CheckBinaries(requirements)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, status := range statuses {
				kind := statusOK
				message := status.Command
				if !status.Available {
					kind = statusWarn
					message = status.Detail
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Missing tools are skipped at merge time; the raw fallback needs neither.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&launch, "launch", false, "Invoke each tool instead of only checking PATH")
	return cmd
}
