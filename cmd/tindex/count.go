package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tindexio/tindex"
)

// newCountCommand builds "tindex count", the word-frequency counter over a
// single input file.
func newCountCommand(ctx context.Context) *cobra.Command {
	var opt runOptions

	cmd := &cobra.Command{
		Use:   "count <input> <output>",
		Short: "Build a word-frequency count of a single file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(ctx, opt, args[0], args[1])
		},
		SilenceUsage: true,
	}
	addRunOptions(&opt, cmd.Flags())
	return cmd
}

func runCount(ctx context.Context, opt runOptions, input, output string) error {
	cfg := opt.toConfig(tindex.ModeWordCount, input, output)

	start := time.Now()
	stats, err := tindex.Run(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "count")
	}

	fmt.Println(color.GreenString("done") + " in " + time.Since(start).Round(time.Millisecond).String())
	fmt.Printf("  read:       %s\n", formatBytes(stats.BytesRead))
	fmt.Printf("  chunks:     %s\n", formatNumber(stats.ChunksProduced))
	fmt.Printf("  partitions: %s\n", formatNumber(stats.PartitionsWritten))
	return nil
}
