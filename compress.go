package tindex

import "github.com/klauspost/compress/zstd"

// Partition files are plain text by default (see §6 of SPEC_FULL.md), but
// the Aggregator may be configured to zstd-compress them: the plain-text
// snapshot is written to a temp file and replaced by a ".zst" copy -- useful for workloads that spill often (S4-style small
// memory ceilings). The Output file itself is never compressed.
var (
	partitionEncoder, _ = zstd.NewWriter(nil)
	partitionDecoder, _ = zstd.NewReader(nil)
)

// CompressPartition compresses a partition file snapshot before it is
// written to disk.
func CompressPartition(src []byte) ([]byte, error) {
	return partitionEncoder.EncodeAll(src, make([]byte, 0, len(src))), nil
}

// DecompressPartition reverses CompressPartition. If dst is non-nil it is
// used as the destination buffer.
func DecompressPartition(dst, src []byte) ([]byte, error) {
	return partitionDecoder.DecodeAll(src, dst)
}
