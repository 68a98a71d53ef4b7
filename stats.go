package tindex

import "sync/atomic"

// Stats reports runtime counters for a pipeline run, mirroring the
// atomic-counter pattern desync's ChunkingStats uses for its own parallel
// chunking workers. All fields are diagnostic only, per the Open Question
// in SPEC_FULL.md §9 about get_total_words(): none of them are part of the
// output contract.
type Stats struct {
	BytesRead         uint64
	ChunksProduced    uint64
	FilesSkipped      uint64
	PartitionsWritten uint64
}

func (s *Stats) addBytesRead(n int) {
	atomic.AddUint64(&s.BytesRead, uint64(n))
}

func (s *Stats) incChunksProduced() {
	atomic.AddUint64(&s.ChunksProduced, 1)
}

func (s *Stats) incFilesSkipped() {
	atomic.AddUint64(&s.FilesSkipped, 1)
}

func (s *Stats) incPartitionsWritten() {
	atomic.AddUint64(&s.PartitionsWritten, 1)
}

func (s *Stats) bytesRead() uint64 {
	return atomic.LoadUint64(&s.BytesRead)
}
