package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bookbind/internal/config"
	"bookbind/internal/wavio"
)

func newProbeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "probe <file.wav>",
		Short:       "Print a segment's format descriptor",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := wavio.Probe(path)
			if err != nil {
				return err
			}

			duration := time.Duration(0)
			if rate := info.Format.ByteRate(); rate > 0 {
				duration = time.Duration(float64(info.DataSize) / float64(rate) * float64(time.Second))
			}

			headers := []string{"Field", "Value"}
			rows := [][]string{
				{"channels", fmt.Sprintf("%d", info.Format.Channels)},
				{"sample_width", fmt.Sprintf("%d bytes", info.Format.SampleWidth)},
				{"sample_rate", fmt.Sprintf("%d Hz", info.Format.SampleRate)},
				{"bits_per_sample", fmt.Sprintf("%d", info.Format.BitsPerSample())},
				{"payload", fmt.Sprintf("%d bytes", info.DataSize)},
				{"duration", duration.Round(time.Millisecond).String()},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
