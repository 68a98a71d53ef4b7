package tindex

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readAllItems(t *testing.T, r *Reader) []WorkItem {
	t.Helper()
	var items []WorkItem
	done := make(chan struct{})
	go func() {
		for {
			item, ok := r.Queue.Pop()
			if !ok {
				close(done)
				return
			}
			items = append(items, item)
		}
	}()
	if err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-done
	return items
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReaderNeverSplitsAToken(t *testing.T) {
	// A chunk size that lands exactly in the middle of a word: the Reader
	// must push the join's word whole in one payload, not split across two.
	content := "alpha beta gamma delta epsilon"
	path := writeTempFile(t, content)

	r := &Reader{
		Mode:      ModeWordCount,
		Paths:     []string{path},
		ChunkSize: 7, // splits inside "beta" or "gamma" depending on offset
		Queue:     NewWorkQueue(100),
		Shutdown:  &shutdownFlag{},
		Stats:     &Stats{},
	}
	items := readAllItems(t, r)

	var rebuilt strings.Builder
	for _, it := range items {
		rebuilt.Write(it.Payload)
	}
	if rebuilt.String() != content {
		t.Fatalf("rebuilt payloads = %q; want %q", rebuilt.String(), content)
	}
	for _, it := range items {
		for _, tok := range strings.Fields(string(it.Payload)) {
			if strings.Contains(content, tok) {
				continue
			}
			t.Fatalf("payload contains a token not present verbatim in the source: %q", tok)
		}
	}
}

func TestReaderSingleTokenExceedsChunkSize(t *testing.T) {
	content := "supercalifragilisticexpialidocious"
	path := writeTempFile(t, content)

	r := &Reader{
		Mode:      ModeWordCount,
		Paths:     []string{path},
		ChunkSize: 4,
		Queue:     NewWorkQueue(100),
		Shutdown:  &shutdownFlag{},
		Stats:     &Stats{},
	}
	items := readAllItems(t, r)

	var rebuilt strings.Builder
	for _, it := range items {
		rebuilt.Write(it.Payload)
	}
	if rebuilt.String() != content {
		t.Fatalf("rebuilt = %q; want %q", rebuilt.String(), content)
	}
}

func TestReaderInvertedIndexSourceIDsPerChunk(t *testing.T) {
	content := strings.Repeat("word ", 50)
	path := writeTempFile(t, content)

	r := &Reader{
		Mode:      ModeInvertedIndex,
		Paths:     []string{path},
		ChunkSize: 16,
		Queue:     NewWorkQueue(100),
		Shutdown:  &shutdownFlag{},
		Stats:     &Stats{},
	}
	items := readAllItems(t, r)
	if len(items) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(items))
	}
	seen := map[string]bool{}
	for i, it := range items {
		want := sourceID(path, i)
		if it.SourceID != want {
			t.Fatalf("item %d: SourceID = %q; want %q", i, it.SourceID, want)
		}
		if seen[it.SourceID] {
			t.Fatalf("duplicate source_id %q", it.SourceID)
		}
		seen[it.SourceID] = true
	}
}

func TestReaderMissingFileIsUnreadableNotFatal(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "does-not-exist.txt")

	r := &Reader{
		Mode:      ModeWordCount,
		Paths:     []string{missing},
		ChunkSize: 64,
		Queue:     NewWorkQueue(10),
		Shutdown:  &shutdownFlag{},
		Stats:     &Stats{},
	}
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("missing file should be skipped, not returned as a fatal error: %v", err)
	}
	if r.Stats.FilesSkipped != 1 {
		t.Fatalf("FilesSkipped = %d; want 1", r.Stats.FilesSkipped)
	}
}

func TestWalkInputsSingleFile(t *testing.T) {
	path := writeTempFile(t, "hello")
	files, err := WalkInputs(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("got %v; want [%s]", files, path)
	}
}

func TestWalkInputsDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := WalkInputs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files; want 2", len(files))
	}
}

func TestWalkInputsMissingPath(t *testing.T) {
	_, err := WalkInputs("/nonexistent/path/for/tindex/tests")
	if _, ok := err.(InputMissing); !ok {
		t.Fatalf("got %v; want InputMissing", err)
	}
}
