package tindex

import (
	"fmt"
	"path/filepath"
	"sync"
)

// LocalIndex is built by exactly one tokenizer worker from exactly one
// WorkItem, then merged into the GlobalIndex and discarded (§3, lifecycle).
// It is never shared between goroutines.
type LocalIndex struct {
	mode     Mode
	counts   map[string]uint64
	postings map[string]map[string]struct{}
}

// NewLocalIndex allocates an empty local index for the given mode.
func NewLocalIndex(mode Mode) *LocalIndex {
	l := &LocalIndex{mode: mode}
	switch mode {
	case ModeWordCount:
		l.counts = make(map[string]uint64)
	case ModeInvertedIndex:
		l.postings = make(map[string]map[string]struct{})
	}
	return l
}

// Add records one occurrence of token, attributed to sourceID in
// inverted-index mode (ignored in word-count mode).
func (l *LocalIndex) Add(token, sourceID string) {
	switch l.mode {
	case ModeWordCount:
		l.counts[token]++
	case ModeInvertedIndex:
		set := l.postings[token]
		if set == nil {
			set = make(map[string]struct{}, 1)
			l.postings[token] = set
		}
		set[sourceID] = struct{}{}
	}
}

// Len returns the number of distinct tokens in this local index.
func (l *LocalIndex) Len() int {
	if l.mode == ModeWordCount {
		return len(l.counts)
	}
	return len(l.postings)
}

// GlobalIndex is the shared, mutex-protected index all tokenizer workers
// merge their LocalIndex contributions into (§4.4). When the number of
// distinct keys exceeds maxMemoryWords after a merge, it spills its entire
// contents to a new partition file and resets to empty -- the "simpler
// serialization model" permitted by §4.4: the flush happens inside the same
// critical section as the merge, so no concurrent merge can ever observe
// more than maxMemoryWords keys.
type GlobalIndex struct {
	mu             sync.Mutex
	mode           Mode
	counts         map[string]uint64
	postings       map[string]map[string]struct{}
	maxMemoryWords int
	tempDir        string
	compress       bool
	partitions     []string
	partitionSeq   int
	stats          *Stats
}

// NewGlobalIndex creates an empty global index that spills to tempDir once
// it holds more than maxMemoryWords distinct keys.
func NewGlobalIndex(mode Mode, maxMemoryWords int, tempDir string, compress bool, stats *Stats) *GlobalIndex {
	g := &GlobalIndex{
		mode:           mode,
		maxMemoryWords: maxMemoryWords,
		tempDir:        tempDir,
		compress:       compress,
		stats:          stats,
	}
	g.reset()
	return g
}

func (g *GlobalIndex) reset() {
	switch g.mode {
	case ModeWordCount:
		g.counts = make(map[string]uint64)
	case ModeInvertedIndex:
		g.postings = make(map[string]map[string]struct{})
	}
}

// lenLocked returns the distinct key count. Caller must hold mu.
func (g *GlobalIndex) lenLocked() int {
	if g.mode == ModeWordCount {
		return len(g.counts)
	}
	return len(g.postings)
}

// Len returns a best-effort distinct key count, for diagnostics (§9's
// get_total_words Open Question: never part of the output contract).
func (g *GlobalIndex) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lenLocked()
}

// Partitions returns the paths of partition files written so far.
func (g *GlobalIndex) Partitions() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.partitions))
	copy(out, g.partitions)
	return out
}

// Merge folds local into the global index under a single critical section
// that also covers the post-merge size check and, if needed, the flush
// itself (§4.3, §4.4). Returns a ResourceExhaustion if a required flush
// fails to write its partition file.
func (g *GlobalIndex) Merge(local *LocalIndex) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.mode {
	case ModeWordCount:
		for token, n := range local.counts {
			g.counts[token] += n
		}
	case ModeInvertedIndex:
		for token, srcs := range local.postings {
			dst := g.postings[token]
			if dst == nil {
				dst = make(map[string]struct{}, len(srcs))
				g.postings[token] = dst
			}
			for id := range srcs {
				dst[id] = struct{}{}
			}
		}
	}

	if g.lenLocked() > g.maxMemoryWords {
		return g.flushLocked()
	}
	return nil
}

// flushLocked snapshots the current maps to a new partition file and resets
// the index to empty. Caller must hold mu.
func (g *GlobalIndex) flushLocked() error {
	path := filepath.Join(g.tempDir, fmt.Sprintf("index_temp_%d.tmp", g.partitionSeq))
	g.partitionSeq++

	if err := writePartitionFile(path, g.mode, g.counts, g.postings, g.compress); err != nil {
		return ResourceExhaustion{Op: "flush partition", Err: err}
	}
	if g.compress {
		path += compressedSuffix
	}
	g.partitions = append(g.partitions, path)
	if g.stats != nil {
		g.stats.incPartitionsWritten()
	}
	g.reset()
	return nil
}

// MergePartitionFile streams path's records into the global index, the way
// the Merger folds remaining partition files into residual in-memory state
// (§4.5 step 2). Unlike Merge, this never re-checks the memory ceiling --
// by the time the Merger runs, every tokenizer worker has already exited
// and the ceiling invariant no longer applies (it binds the build phase
// only, per §3 invariant 3).
func (g *GlobalIndex) MergePartitionFile(path string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return readPartitionInto(path, g.mode, g.counts, g.postings)
}
