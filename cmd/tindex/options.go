package main

import (
	"github.com/spf13/pflag"

	"github.com/tindexio/tindex"
)

// runOptions are the tunables shared by both subcommands, mirroring the
// cmdStoreOptions pattern the teacher uses to share flags across commands.
type runOptions struct {
	chunkSizeKB int
	workers     int
	maxWords    int
	queueSize   int
	fanIn       int
	compress    bool
	noProgress  bool
}

func addRunOptions(opt *runOptions, flags *pflag.FlagSet) {
	flags.IntVar(&opt.chunkSizeKB, "chunk-size", 64, "read chunk size in KB")
	flags.IntVarP(&opt.workers, "workers", "n", 0, "number of tokenizer workers (default: number of CPUs)")
	flags.IntVar(&opt.maxWords, "max-memory-words", 0, "distinct key ceiling before spilling to disk (default depends on mode)")
	flags.IntVar(&opt.queueSize, "queue-size", 256, "bounded work-queue capacity")
	flags.IntVar(&opt.fanIn, "fan-in", 10, "partition files merged per group during final merge")
	flags.BoolVar(&opt.compress, "compress-partitions", false, "zstd-compress partition files spilled to disk")
	flags.BoolVar(&opt.noProgress, "no-progress", false, "disable the progress bar")
}

func (opt runOptions) toConfig(mode tindex.Mode, inputPath, outputPath string) tindex.Config {
	cfg := tindex.Config{
		Mode:           mode,
		InputPath:      inputPath,
		OutputPath:     outputPath,
		ChunkSize:      uint64(opt.chunkSizeKB) * 1024,
		NumWorkers:     opt.workers,
		MaxMemoryWords: opt.maxWords,
		QueueCapacity:  opt.queueSize,
		FanIn:          opt.fanIn,
		TempDir:        tempDir,
		Compress:       opt.compress,
	}
	if !opt.noProgress {
		cfg.Progress = tindex.NewProgressBar(inputPath + " ")
	}
	return cfg
}
