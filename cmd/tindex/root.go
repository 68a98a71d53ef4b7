package main

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tindexio/tindex"
)

var (
	verbose bool
	tempDir string
)

// newRootCommand builds the tindex command tree: "count" for word-frequency
// counting over one file, "index" for an inverted index over a directory.
func newRootCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tindex",
		Short: "Bounded-memory indexer for large text corpora.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			tindex.Log.SetOutput(cmd.ErrOrStderr())
			if verbose {
				tindex.Log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")
	cmd.PersistentFlags().StringVar(&tempDir, "temp-dir", "", "directory for partition files (default: OS temp dir)")

	cmd.AddCommand(newCountCommand(ctx))
	cmd.AddCommand(newIndexCommand(ctx))
	return cmd
}
