package tindex

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Reader walks its configured input(s), reads fixed-size raw chunks, repairs
// token boundaries at chunk joins, and pushes WorkItems onto a WorkQueue.
// See §4.1 of SPEC_FULL.md.
type Reader struct {
	Mode      Mode
	Paths     []string // one file (word-count) or pre-walked file list (inverted-index)
	ChunkSize uint64
	Queue     *WorkQueue
	Shutdown  *shutdownFlag
	Stats     *Stats
}

// Run reads every configured path in turn, pushing WorkItems onto the
// queue, and calls Queue.Finish() exactly once before returning -- whether
// it exhausts the inputs normally or stops early because of a fatal error
// or the shutdown flag. A non-nil error here always means a fatal IOError;
// per-file InputUnreadable problems are logged and skipped.
func (r *Reader) Run(ctx context.Context) error {
	defer r.Queue.Finish()

	for _, path := range r.Paths {
		if r.Shutdown.isSet() {
			return nil
		}
		if err := r.readFile(ctx, path); err != nil {
			var ioErr IOError
			if errors.As(err, &ioErr) {
				r.Shutdown.set()
				return err
			}
			// Unreadable file: log and continue with the rest.
			Log.Warnf("%s", InputUnreadable{Path: path, Err: err})
			r.Stats.incFilesSkipped()
		}
	}
	return nil
}

// readFile implements the chunk-boundary algorithm of §4.1 for a single
// source file.
func (r *Reader) readFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, r.ChunkSize+1)
	var tail []byte
	chunkID := 0

	for {
		if r.Shutdown.isSet() {
			return nil
		}
		n, err := io.ReadFull(f, buf)
		switch {
		case err == nil:
			// Got exactly ChunkSize+1 bytes; fall through to boundary repair.
		case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
			// Fewer bytes were returned: the file is exhausted.
			if n == 0 && len(tail) == 0 {
				return nil
			}
			payload := append(tail, buf[:n]...)
			tail = nil
			if len(payload) > 0 {
				r.push(path, chunkID, payload)
				chunkID++
			}
			return nil
		default:
			return IOError{Op: "read", Path: path, Err: err}
		}

		chunk := append(tail, buf[:n]...)
		tail = nil

		if !isASCIISpace(chunk[len(chunk)-1]) {
			w := lastWhitespace(chunk)
			if w < 0 {
				// No whitespace anywhere in the buffer: a single token
				// exceeding ChunkSize. Carry all of it forward so it reaches
				// one WorkItem intact once whitespace or end-of-file is found.
				tail = chunk
				continue
			}
			tail = append(tail, chunk[w+1:]...)
			chunk = chunk[:w+1]
		}

		r.push(path, chunkID, chunk)
		chunkID++
	}
}

func (r *Reader) push(path string, chunkID int, payload []byte) {
	id := path
	if r.Mode == ModeInvertedIndex {
		id = sourceID(path, chunkID)
	}
	r.Stats.addBytesRead(len(payload))
	r.Stats.incChunksProduced()
	r.Queue.Push(WorkItem{SourceID: id, ChunkID: chunkID, Payload: payload})
}

func lastWhitespace(b []byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if isASCIISpace(b[i]) {
			return i
		}
	}
	return -1
}

// WalkInputs expands a directory into the sorted list of regular files it
// (recursively) contains, for inverted-index mode. Unreadable directory
// entries are skipped with a warning, matching InputUnreadable semantics;
// the walk itself failing outright is reported as InputMissing-adjacent to
// the caller.
func WalkInputs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, InputMissing{Path: root}
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			Log.Warnf("%s", InputUnreadable{Path: path, Err: err})
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// TotalSize sums the sizes of paths, for progress-bar initialization.
func TotalSize(paths []string) uint64 {
	var total uint64
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			total += uint64(info.Size())
		}
	}
	return total
}
