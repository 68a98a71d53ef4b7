package tindex

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/folbricht/tempfile"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
)

// Merger implements the end-of-stream fan-in of §4.5: partition files are
// combined in groups of FanIn (the source this was ported from hard-coded
// 10, see index.cpp's merge_files) until at most FanIn remain, each group
// merge running concurrently via errgroup. The survivors are then folded
// into the caller's residual GlobalIndex and the whole thing is written out
// as the single deterministic Output file.
type Merger struct {
	Mode     Mode
	FanIn    int
	TempDir  string
	Compress bool

	mergeSeq int64
}

// Finalize drains global's remaining partition files, merges everything
// into one result, and writes it to outputPath. On failure it removes any
// partially written output file; partition files not yet folded into global
// are left in place for diagnosis, while those already folded in have been
// deleted.
func (m *Merger) Finalize(ctx context.Context, global *GlobalIndex, outputPath string) error {
	partitions := global.Partitions()

	for len(partitions) > m.FanIn {
		merged, err := m.mergeRound(ctx, partitions)
		if err != nil {
			return err
		}
		for _, p := range partitions {
			os.Remove(p)
		}
		partitions = merged
	}

	for _, p := range partitions {
		if err := global.MergePartitionFile(p); err != nil {
			return MergeError{Path: outputPath, Err: err}
		}
		os.Remove(p)
	}

	if err := m.writeOutput(global, outputPath); err != nil {
		os.Remove(outputPath)
		return MergeError{Path: outputPath, Err: err}
	}
	return nil
}

// mergeRound folds partitions together FanIn at a time, each group running
// in its own goroutine, and returns the resulting (smaller) partition list.
func (m *Merger) mergeRound(ctx context.Context, partitions []string) ([]string, error) {
	var groups [][]string
	for i := 0; i < len(partitions); i += m.FanIn {
		end := i + m.FanIn
		if end > len(partitions) {
			end = len(partitions)
		}
		groups = append(groups, partitions[i:end])
	}

	results := make([]string, len(groups))
	g, ctx := errgroup.WithContext(ctx)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			path, err := m.mergeGroup(group)
			if err != nil {
				return err
			}
			results[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, MergeError{Path: m.TempDir, Err: err}
	}
	return results, nil
}

// mergeGroup combines one group of partition files into a single new
// partition file, the unit of work index.cpp's merge_file_to_memory /
// flush_to_temp_file pair performs sequentially for every group of 10.
func (m *Merger) mergeGroup(group []string) (string, error) {
	counts := map[string]uint64{}
	postings := map[string]map[string]struct{}{}

	for _, p := range group {
		if err := readPartitionInto(p, m.Mode, counts, postings); err != nil {
			return "", err
		}
	}

	seq := atomic.AddInt64(&m.mergeSeq, 1)
	path := filepath.Join(m.TempDir, fmt.Sprintf("merge_temp_%d.tmp", seq))
	if err := writePartitionFile(path, m.Mode, counts, postings, m.Compress); err != nil {
		return "", err
	}
	if m.Compress {
		path += compressedSuffix
	}
	return path, nil
}

// writeOutput writes global's final contents to outputPath: word-count
// records sorted by count descending, ties broken lexicographically
// ascending (the deterministic tie-break chosen for the Open Question in
// §9); inverted-index records sorted by token, each with its source_ids in
// ascending order. Writes go through an
// anonymous temp file in the output directory, renamed into place, so a
// reader never observes a partially written Output file.
func (m *Merger) writeOutput(global *GlobalIndex, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tf, err := tempfile.New(dir, ".tindex-output")
	if err != nil {
		return err
	}
	tmpName := tf.Name()

	bw := bufio.NewWriter(tf)
	var writeErr error
	switch global.mode {
	case ModeWordCount:
		writeErr = writeWordCounts(bw, global.counts)
	case ModeInvertedIndex:
		writeErr = writePostings(bw, global.postings)
	}
	if writeErr == nil {
		writeErr = bw.Flush()
	}
	if writeErr != nil {
		tf.Close()
		os.Remove(tmpName)
		return writeErr
	}
	if err := tf.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, outputPath)
}

func writeWordCounts(w *bufio.Writer, counts map[string]uint64) error {
	tokens := maps.Keys(counts)
	sort.Slice(tokens, func(i, j int) bool {
		ci, cj := counts[tokens[i]], counts[tokens[j]]
		if ci != cj {
			return ci > cj
		}
		return tokens[i] < tokens[j]
	})
	for _, token := range tokens {
		if _, err := fmt.Fprintf(w, "%s %d\n", token, counts[token]); err != nil {
			return err
		}
	}
	return nil
}

func writePostings(w *bufio.Writer, postings map[string]map[string]struct{}) error {
	tokens := maps.Keys(postings)
	sort.Strings(tokens)
	for _, token := range tokens {
		srcs := maps.Keys(postings[token])
		sort.Strings(srcs)
		if _, err := w.WriteString(token); err != nil {
			return err
		}
		for _, src := range srcs {
			if _, err := fmt.Fprintf(w, " %s", src); err != nil {
				return err
			}
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}
