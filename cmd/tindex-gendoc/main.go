// Command tindex-gendoc generates a large synthetic text corpus for
// exercising the tindex pipeline at scale, the Go counterpart of
// generateDoc20gb.cpp: a dictionary of words is repeated in pseudo-random
// order across N worker goroutines, each writing its own part file, which
// are then concatenated into the final corpus.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const blockSize = 1024 * 1024

func main() {
	var (
		dictPath  string
		outputDir string
		sizeGB    int
		workers   int
	)
	pflag.StringVar(&dictPath, "dict", "", "path to a newline-delimited word list (required)")
	pflag.StringVar(&outputDir, "out", "gendoc-output", "output directory")
	pflag.IntVar(&sizeGB, "size-gb", 1, "target corpus size in GB")
	pflag.IntVar(&workers, "workers", runtime.NumCPU(), "number of generator goroutines")
	pflag.Parse()

	if dictPath == "" {
		fmt.Fprintln(os.Stderr, "error: --dict is required")
		os.Exit(1)
	}
	if err := run(dictPath, outputDir, sizeGB, workers); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(dictPath, outputDir string, sizeGB, workers int) error {
	words, err := readDictionary(dictPath)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return fmt.Errorf("dictionary %s is empty", dictPath)
	}

	partsDir := filepath.Join(outputDir, "parts")
	if err := os.MkdirAll(partsDir, 0755); err != nil {
		return err
	}

	totalBytes := uint64(sizeGB) * 1024 * 1024 * 1024
	bytesPerWorker := totalBytes / uint64(workers)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < workers; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return writePart(partsDir, i, bytesPerWorker, words)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Println("merging parts...")
	finalPath := filepath.Join(outputDir, "corpus.txt")
	if err := mergeParts(partsDir, workers, finalPath); err != nil {
		return err
	}
	fmt.Println("done:", finalPath)
	return nil
}

func readDictionary(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w != "" {
			words = append(words, w)
		}
	}
	return words, sc.Err()
}

// writePart generates roughly targetBytes of whitespace-separated random
// words, seeded deterministically per worker so a run is reproducible.
func writePart(partsDir string, workerID int, targetBytes uint64, words []string) error {
	path := filepath.Join(partsDir, fmt.Sprintf("part_%d.txt", workerID))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	rng := rand.New(rand.NewSource(int64(workerID)))

	var written uint64
	var block strings.Builder
	for written < targetBytes {
		block.Reset()
		for uint64(block.Len()) < blockSize {
			block.WriteString(words[rng.Intn(len(words))])
			block.WriteByte(' ')
		}
		n, err := bw.WriteString(block.String())
		if err != nil {
			return err
		}
		written += uint64(n)
	}
	return bw.Flush()
}

// mergeParts concatenates every part file into finalPath, in worker order,
// separated by a single space so no two part files fuse into one token.
func mergeParts(partsDir string, workers int, finalPath string) error {
	out, err := os.Create(finalPath)
	if err != nil {
		return err
	}
	defer out.Close()
	bw := bufio.NewWriterSize(out, 8*1024*1024)

	for i := 0; i < workers; i++ {
		path := filepath.Join(partsDir, fmt.Sprintf("part_%d.txt", i))
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		if _, err := bw.ReadFrom(in); err != nil {
			in.Close()
			return err
		}
		in.Close()
		if i < workers-1 {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
