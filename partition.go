package tindex

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/folbricht/tempfile"
)

// compressedSuffix marks a partition file that was zstd-compressed by the
// Aggregator (§11 DOMAIN STACK). Partitions are plain text otherwise.
const compressedSuffix = ".zst"

// writePartitionFile serializes counts (word-count mode) or postings
// (inverted-index mode) as a partition file at path, one record per line:
// "<token> <count>" or "<token> <src1> <src2> ...". Writes go to an
// anonymous temp file in the same directory first and are renamed into
// place once complete, the same crash-safety idiom the teacher's
// LocalStore.StoreChunk uses for chunk files. With compress set, the temp
// file is instead read back, compressed, written directly to
// path+compressedSuffix, and then removed; that write is not renamed into
// place.
func writePartitionFile(path string, mode Mode, counts map[string]uint64, postings map[string]map[string]struct{}, compress bool) (err error) {
	dir := filepath.Dir(path)
	tf, err := tempfile.New(dir, ".tindex-partition")
	if err != nil {
		return err
	}
	tmpName := tf.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if werr := encodePartition(tf, mode, counts, postings); werr != nil {
		tf.Close()
		return werr
	}
	if cerr := tf.Close(); cerr != nil {
		return cerr
	}

	finalPath := path
	if compress {
		finalPath = path + compressedSuffix
		if cerr := compressFile(tmpName, finalPath); cerr != nil {
			return cerr
		}
		os.Remove(tmpName)
		return nil
	}
	return os.Rename(tmpName, finalPath)
}

func encodePartition(w io.Writer, mode Mode, counts map[string]uint64, postings map[string]map[string]struct{}) error {
	bw := bufio.NewWriter(w)
	switch mode {
	case ModeWordCount:
		for token, n := range counts {
			if _, err := bw.WriteString(token); err != nil {
				return err
			}
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
			if _, err := bw.WriteString(strconv.FormatUint(n, 10)); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	case ModeInvertedIndex:
		for token, srcs := range postings {
			if _, err := bw.WriteString(token); err != nil {
				return err
			}
			for src := range srcs {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
				if _, err := bw.WriteString(src); err != nil {
					return err
				}
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func compressFile(srcPath, dstPath string) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return err
	}
	compressed, err := CompressPartition(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dstPath, compressed, 0644)
}

// readPartitionInto streams path's records into counts/postings (whichever
// matches mode), additive for counts and union for source_ids, as used by
// both GlobalIndex.MergePartitionFile and the Merger's group-merge pass
// (§4.5). Transparently decompresses ".zst" partitions.
func readPartitionInto(path string, mode Mode, counts map[string]uint64, postings map[string]map[string]struct{}) error {
	var r io.Reader
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	r = f

	if strings.HasSuffix(path, compressedSuffix) {
		raw, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		plain, err := DecompressPartition(nil, raw)
		if err != nil {
			return err
		}
		r = strings.NewReader(string(plain))
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		token := line[:sp]
		rest := line[sp+1:]
		switch mode {
		case ModeWordCount:
			n, err := strconv.ParseUint(rest, 10, 64)
			if err != nil {
				return err
			}
			counts[token] += n
		case ModeInvertedIndex:
			set := postings[token]
			if set == nil {
				set = make(map[string]struct{})
				postings[token] = set
			}
			for _, src := range strings.Fields(rest) {
				set[src] = struct{}{}
			}
		}
	}
	return sc.Err()
}
