package tindex

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
)

// Mode selects which of the two index products a pipeline run builds.
type Mode int

const (
	// ModeWordCount builds a word-frequency counter over a single input file.
	ModeWordCount Mode = iota
	// ModeInvertedIndex builds a map of token to the set of source_ids it
	// appears in, across a directory of input files.
	ModeInvertedIndex
)

func (m Mode) String() string {
	switch m {
	case ModeWordCount:
		return "word-count"
	case ModeInvertedIndex:
		return "inverted-index"
	default:
		return "unknown"
	}
}

// DefaultMaxMemoryWords returns the distinct-key ceiling used when the CLI
// doesn't override it, per §6 of SPEC_FULL.md.
func (m Mode) DefaultMaxMemoryWords() int {
	if m == ModeInvertedIndex {
		return 5_000_000
	}
	return 1_000_000
}

// WorkItem is one unit of work handed from the Reader to a tokenizer
// worker: a chunk of bytes from one source, tagged with the source's
// identifier and this chunk's position within it.
type WorkItem struct {
	SourceID string
	ChunkID  int
	Payload  []byte
}

// sourceID builds the inverted-index source_id for a chunk: the file's
// basename with any whitespace replaced by underscores (tokens and
// source_ids may never contain whitespace, see §6), suffixed with the
// chunk number.
func sourceID(path string, chunkID int) string {
	base := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return '_'
		}
		return r
	}, filepath.Base(path))
	return base + "_chunk_" + strconv.Itoa(chunkID)
}

// isASCIISpace reports whether b is one of the four whitespace bytes the
// Reader and tokenizer split on: space, tab, CR, LF.
func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

// splitASCIIWhitespace splits payload on runs of the same four bytes
// isASCIISpace recognizes. Unlike bytes.Fields, it never treats other
// Unicode whitespace (U+00A0, \v, \f, ...) as a separator, keeping the
// tokenizer in agreement with the Reader's chunk-boundary repair.
func splitASCIIWhitespace(payload []byte) [][]byte {
	return bytes.FieldsFunc(payload, func(r rune) bool {
		return r <= 0xFF && isASCIISpace(byte(r))
	})
}

// isASCIIPunct mirrors C's ispunct() for the printable ASCII range: any
// printable character that is neither a letter, digit, nor space.
func isASCIIPunct(b byte) bool {
	return (b >= '!' && b <= '/') ||
		(b >= ':' && b <= '@') ||
		(b >= '[' && b <= '`') ||
		(b >= '{' && b <= '~')
}

// normalizeToken strips leading/trailing ASCII punctuation from raw and
// lowercases the ASCII letters in what remains, per the tokenization rules
// in §4.3. Bytes at or above 0x80 pass through unchanged. Returns nil if
// nothing is left after trimming.
func normalizeToken(raw []byte) []byte {
	start, end := 0, len(raw)
	for start < end && isASCIIPunct(raw[start]) {
		start++
	}
	for end > start && isASCIIPunct(raw[end-1]) {
		end--
	}
	if start >= end {
		return nil
	}
	out := make([]byte, end-start)
	for i, b := range raw[start:end] {
		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return out
}
