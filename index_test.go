package tindex

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocalIndexWordCount(t *testing.T) {
	l := NewLocalIndex(ModeWordCount)
	l.Add("foo", "")
	l.Add("foo", "")
	l.Add("bar", "")
	if l.counts["foo"] != 2 || l.counts["bar"] != 1 {
		t.Fatalf("unexpected counts: %+v", l.counts)
	}
	if l.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", l.Len())
	}
}

func TestLocalIndexInvertedIndex(t *testing.T) {
	l := NewLocalIndex(ModeInvertedIndex)
	l.Add("foo", "doc_chunk_0")
	l.Add("foo", "doc_chunk_1")
	if len(l.postings["foo"]) != 2 {
		t.Fatalf("expected 2 sources for foo, got %d", len(l.postings["foo"]))
	}
}

func TestGlobalIndexMergeNoSpill(t *testing.T) {
	dir := t.TempDir()
	g := NewGlobalIndex(ModeWordCount, 100, dir, false, &Stats{})

	l1 := NewLocalIndex(ModeWordCount)
	l1.Add("foo", "")
	l2 := NewLocalIndex(ModeWordCount)
	l2.Add("foo", "")
	l2.Add("bar", "")

	if err := g.Merge(l1); err != nil {
		t.Fatal(err)
	}
	if err := g.Merge(l2); err != nil {
		t.Fatal(err)
	}
	if g.counts["foo"] != 2 || g.counts["bar"] != 1 {
		t.Fatalf("unexpected global counts: %+v", g.counts)
	}
	if len(g.Partitions()) != 0 {
		t.Fatal("expected no partitions written below the memory ceiling")
	}
}

func TestGlobalIndexSpillsAndResets(t *testing.T) {
	dir := t.TempDir()
	stats := &Stats{}
	g := NewGlobalIndex(ModeWordCount, 1, dir, false, stats)

	l := NewLocalIndex(ModeWordCount)
	l.Add("foo", "")
	l.Add("bar", "")

	if err := g.Merge(l); err != nil {
		t.Fatal(err)
	}
	if g.Len() != 0 {
		t.Fatalf("global index should have reset after spill, Len() = %d", g.Len())
	}
	parts := g.Partitions()
	if len(parts) != 1 {
		t.Fatalf("expected exactly one partition file, got %d", len(parts))
	}
	if stats.PartitionsWritten != 1 {
		t.Fatalf("stats.PartitionsWritten = %d; want 1", stats.PartitionsWritten)
	}
	if _, err := os.Stat(parts[0]); err != nil {
		t.Fatalf("partition file missing on disk: %v", err)
	}
}

func TestGlobalIndexSpillsAndResetsCompressed(t *testing.T) {
	dir := t.TempDir()
	stats := &Stats{}
	g := NewGlobalIndex(ModeWordCount, 1, dir, true, stats)

	l := NewLocalIndex(ModeWordCount)
	l.Add("foo", "")
	l.Add("bar", "")

	if err := g.Merge(l); err != nil {
		t.Fatal(err)
	}
	parts := g.Partitions()
	if len(parts) != 1 {
		t.Fatalf("expected exactly one partition file, got %d", len(parts))
	}
	if _, err := os.Stat(parts[0]); err != nil {
		t.Fatalf("partition path recorded by flushLocked does not exist on disk: %v", err)
	}
	if err := g.MergePartitionFile(parts[0]); err != nil {
		t.Fatalf("MergePartitionFile on a compressed spill failed: %v", err)
	}
	if g.counts["foo"] != 1 || g.counts["bar"] != 1 {
		t.Fatalf("unexpected merged counts after reading back compressed spill: %+v", g.counts)
	}
}

func TestGlobalIndexMergePartitionFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "p0")
	counts := map[string]uint64{"foo": 3, "bar": 1}
	if err := writePartitionFile(path, ModeWordCount, counts, nil, false); err != nil {
		t.Fatal(err)
	}

	g := NewGlobalIndex(ModeWordCount, 1000, dir, false, &Stats{})
	if err := g.MergePartitionFile(path); err != nil {
		t.Fatal(err)
	}
	if g.counts["foo"] != 3 || g.counts["bar"] != 1 {
		t.Fatalf("unexpected merged counts: %+v", g.counts)
	}
}
