package tindex

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// shutdownFlag is a one-way latch the Reader and tokenizer workers poll to
// stop early once a fatal error has been seen anywhere in the pipeline, the
// same role desync's chunking workers give an atomic "stop" bool.
type shutdownFlag struct {
	v int32
}

func (f *shutdownFlag) set() {
	atomic.StoreInt32(&f.v, 1)
}

func (f *shutdownFlag) isSet() bool {
	return atomic.LoadInt32(&f.v) != 0
}

// Config collects everything a single pipeline Run needs: the inputs, the
// resource ceilings from §5, and where to put the result. Zero values for
// the tunables are replaced with the defaults from SPEC_FULL.md §5/§6.
type Config struct {
	Mode Mode

	// InputPath is a single file (ModeWordCount) or a directory to walk
	// (ModeInvertedIndex).
	InputPath  string
	OutputPath string

	ChunkSize      uint64
	NumWorkers     int
	MaxMemoryWords int
	QueueCapacity  int
	FanIn          int
	TempDir        string
	Compress       bool

	Progress ProgressBar
}

const defaultChunkSize = 64 * 1024
const defaultQueueCapacity = 256
const defaultFanIn = 10

func (c *Config) setDefaults() {
	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.NumWorkers <= 0 {
		c.NumWorkers = runtime.NumCPU()
	}
	if c.MaxMemoryWords <= 0 {
		c.MaxMemoryWords = c.Mode.DefaultMaxMemoryWords()
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = defaultQueueCapacity
	}
	if c.FanIn <= 0 {
		c.FanIn = defaultFanIn
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Progress == nil {
		c.Progress = NullProgressBar{}
	}
}

// Run executes one full pipeline: walk/read the input(s), tokenize and
// aggregate in parallel, spill and merge partitions as needed, and write the
// final output file at cfg.OutputPath. It implements §5's concurrency model
// end to end: one Reader goroutine, cfg.NumWorkers tokenizer goroutines, and
// a final single-threaded Merger pass.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	cfg.setDefaults()
	var stats Stats

	paths, err := resolveInputs(cfg)
	if err != nil {
		return stats, err
	}
	// An empty paths slice is only ever a missing-input error in word-count
	// mode, where resolveInputs always returns exactly one path or an error.
	// In inverted-index mode it means an existing, empty directory, which is
	// the legitimate empty-corpus case (index.cpp proceeds and writes an
	// empty output there too): fall through and let the Merger produce a
	// zero-line Output file.

	if err := os.MkdirAll(cfg.TempDir, 0755); err != nil {
		return stats, ResourceExhaustion{Op: "create temp dir", Err: err}
	}

	cfg.Progress.SetTotal(int(TotalSize(paths)))
	cfg.Progress.Start()
	defer cfg.Progress.Finish()

	queue := NewWorkQueue(cfg.QueueCapacity)
	shutdown := &shutdownFlag{}
	global := NewGlobalIndex(cfg.Mode, cfg.MaxMemoryWords, cfg.TempDir, cfg.Compress, &stats)

	reader := &Reader{
		Mode:      cfg.Mode,
		Paths:     paths,
		ChunkSize: cfg.ChunkSize,
		Queue:     queue,
		Shutdown:  shutdown,
		Stats:     &stats,
	}

	var wg sync.WaitGroup
	workerErrs := make([]error, cfg.NumWorkers)
	for i := 0; i < cfg.NumWorkers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			workerErrs[slot] = runTokenizer(queue, global, shutdown)
		}(i)
	}

	progressDone := make(chan struct{})
	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		reportProgress(&stats, cfg.Progress, progressDone)
	}()

	readErr := reader.Run(ctx)
	wg.Wait()
	close(progressDone)
	progressWg.Wait()

	if readErr != nil {
		for _, p := range global.Partitions() {
			os.Remove(p)
		}
		return stats, readErr
	}
	for _, werr := range workerErrs {
		if werr != nil {
			shutdown.set()
			for _, p := range global.Partitions() {
				os.Remove(p)
			}
			return stats, werr
		}
	}

	merger := &Merger{
		Mode:     cfg.Mode,
		FanIn:    cfg.FanIn,
		TempDir:  cfg.TempDir,
		Compress: cfg.Compress,
	}
	if err := merger.Finalize(ctx, global, cfg.OutputPath); err != nil {
		return stats, err
	}
	return stats, nil
}

// resolveInputs expands cfg.InputPath into the concrete file list the
// Reader will walk: the single path itself in word-count mode, or the
// sorted file tree under it in inverted-index mode.
func resolveInputs(cfg Config) ([]string, error) {
	switch cfg.Mode {
	case ModeWordCount:
		if _, err := os.Stat(cfg.InputPath); err != nil {
			return nil, InputMissing{Path: cfg.InputPath}
		}
		return []string{cfg.InputPath}, nil
	case ModeInvertedIndex:
		return WalkInputs(cfg.InputPath)
	default:
		return nil, ConfigError{Msg: "unknown mode"}
	}
}

// runTokenizer is the tokenizer worker loop of §4.2/§4.3: pop WorkItems
// until the queue is drained and finished, split each payload on ASCII
// whitespace, normalize and accumulate tokens into a fresh LocalIndex per
// WorkItem, then merge that LocalIndex into the shared GlobalIndex.
func runTokenizer(queue *WorkQueue, global *GlobalIndex, shutdown *shutdownFlag) error {
	for {
		item, ok := queue.Pop()
		if !ok {
			return nil
		}
		if shutdown.isSet() {
			continue
		}

		local := NewLocalIndex(global.mode)
		for _, raw := range splitASCIIWhitespace(item.Payload) {
			token := normalizeToken(raw)
			if token == nil {
				continue
			}
			local.Add(string(token), item.SourceID)
		}
		if local.Len() == 0 {
			continue
		}
		if err := global.Merge(local); err != nil {
			shutdown.set()
			return err
		}
	}
}

// reportProgress periodically pushes the Reader's cumulative byte count to
// the progress bar until done is closed. Driven off Stats rather than the
// Reader directly so it never touches Reader state from another goroutine.
func reportProgress(stats *Stats, bar ProgressBar, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			bar.Set(int(stats.bytesRead()))
			return
		case <-ticker.C:
			bar.Set(int(stats.bytesRead()))
		}
	}
}
