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

// newIndexCommand builds "tindex index", the inverted index over every
// regular file under a directory.
func newIndexCommand(ctx context.Context) *cobra.Command {
	var opt runOptions

	cmd := &cobra.Command{
		Use:   "index <input-dir> <output>",
		Short: "Build an inverted index over a directory of files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(ctx, opt, args[0], args[1])
		},
		SilenceUsage: true,
	}
	addRunOptions(&opt, cmd.Flags())
	return cmd
}

func runIndex(ctx context.Context, opt runOptions, input, output string) error {
	cfg := opt.toConfig(tindex.ModeInvertedIndex, input, output)

	start := time.Now()
	stats, err := tindex.Run(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "index")
	}

	fmt.Println(color.GreenString("done") + " in " + time.Since(start).Round(time.Millisecond).String())
	fmt.Printf("  read:        %s\n", formatBytes(stats.BytesRead))
	fmt.Printf("  chunks:      %s\n", formatNumber(stats.ChunksProduced))
	fmt.Printf("  files skipped: %s\n", formatNumber(stats.FilesSkipped))
	fmt.Printf("  partitions:  %s\n", formatNumber(stats.PartitionsWritten))
	return nil
}
