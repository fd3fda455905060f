package vecseg

import (
	"bufio"
	"context"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hupe1980/vecseg/internal/conv"
	"github.com/hupe1980/vecseg/internal/fs"
	"github.com/hupe1980/vecseg/segment"
)

// Store reads and writes segment files by path.
//
// A Store holds configuration only. Every operation opens the file, does its
// work and closes the file before returning, so no handle or cached header
// survives a call. Concurrent calls are safe; concurrent writers to the same
// path are not coordinated.
type Store struct {
	opts options
}

// New creates a Store.
func New(optFns ...Option) *Store {
	return &Store{opts: applyOptions(optFns)}
}

var defaultStore = New()

// WriteSegment writes vectors to path using the default Store.
func WriteSegment(path string, vectors [][]float32) error {
	return defaultStore.Write(path, vectors)
}

// ReadHeader reads the header of the segment at path using the default Store.
func ReadHeader(path string) (segment.Header, error) {
	return defaultStore.ReadHeader(path)
}

// ReadAll reads every vector of the segment at path using the default Store.
func ReadAll(path string) ([][]float32, error) {
	return defaultStore.ReadAll(path)
}

// ReadAt reads the vector at index using the default Store.
func ReadAt(path string, index uint32) ([]float32, error) {
	return defaultStore.ReadAt(path, index)
}

// ReadRange reads n vectors starting at start using the default Store.
func ReadRange(path string, start, n uint32) ([][]float32, error) {
	return defaultStore.ReadRange(path, start, n)
}

// Write creates or replaces the segment at path.
//
// The dimension is taken from the first vector; an empty slice writes an
// empty segment. Every vector is validated before the file is opened, so a
// DimensionMismatchError never modifies path. Storage failures are returned
// as *IOError.
func (s *Store) Write(path string, vectors [][]float32) (err error) {
	start := time.Now()
	var h segment.Header
	defer func() {
		if err != nil {
			s.opts.metricsCollector.RecordWrite(0, 0, time.Since(start), err)
		} else {
			s.opts.metricsCollector.RecordWrite(int(h.Count), int64(h.FileSize()), time.Since(start), nil) //nolint:gosec // bounded by written bytes
		}
		s.opts.logger.LogWrite(context.Background(), path, h, err)
	}()

	h, err = segment.Validate(vectors)
	if err != nil {
		return err
	}
	return s.writeFile(path, func(w io.Writer) error {
		_, err := segment.Encode(w, vectors)
		return err
	})
}

// writeFile creates or replaces path with the bytes produced by encode,
// atomically unless WithAtomicWrite(false) was given.
func (s *Store) writeFile(path string, encode func(io.Writer) error) error {
	if s.opts.atomicWrite {
		return s.writeAtomic(path, encode)
	}
	return s.writeDirect(path, encode)
}

func (s *Store) writeDirect(path string, encode func(io.Writer) error) error {
	f, err := s.opts.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.opts.perm)
	if err != nil {
		return ioErr("create", path, err)
	}
	if err := s.flushTo(f, encode); err != nil {
		_ = f.Close()
		return ioErr("write", path, err)
	}
	if err := f.Close(); err != nil {
		return ioErr("close", path, err)
	}
	return nil
}

// writeAtomic writes to a unique temporary file next to path and renames it
// into place. The temporary file is removed on every failure.
func (s *Store) writeAtomic(path string, encode func(io.Writer) error) (err error) {
	tmp := path + ".tmp-" + strconv.FormatUint(rand.Uint64(), 36) //nolint:gosec // name uniqueness only
	f, err := s.opts.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.opts.perm)
	if err != nil {
		return ioErr("create", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = s.opts.fs.Remove(tmp)
		}
	}()

	if err := s.flushTo(f, encode); err != nil {
		_ = f.Close()
		return ioErr("write", tmp, err)
	}
	if err := f.Close(); err != nil {
		return ioErr("close", tmp, err)
	}
	if err := s.opts.fs.Rename(tmp, path); err != nil {
		return ioErr("rename", path, err)
	}
	if s.opts.sync {
		if err := fs.SyncDir(s.opts.fs, filepath.Dir(path)); err != nil {
			return ioErr("sync", filepath.Dir(path), err)
		}
	}
	return nil
}

func (s *Store) flushTo(f fs.File, encode func(io.Writer) error) error {
	bw := bufio.NewWriterSize(f, s.opts.bufferSize)
	if err := encode(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if s.opts.sync {
		return f.Sync()
	}
	return nil
}

// openSegment opens path and decodes its header. The caller closes the file.
func (s *Store) openSegment(path string) (fs.File, segment.Header, int64, error) {
	f, err := s.opts.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, segment.Header{}, 0, ioErr("open", path, err)
	}
	h, err := segment.ReadHeader(f)
	if err != nil {
		_ = f.Close()
		return nil, segment.Header{}, 0, ioErr("read", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, segment.Header{}, 0, ioErr("stat", path, err)
	}
	return f, h, fi.Size(), nil
}

// ReadHeader reads only the first segment.HeaderSize bytes of path.
func (s *Store) ReadHeader(path string) (h segment.Header, err error) {
	defer s.observeRead("header", path, time.Now(), func() int { return 0 }, &err)

	f, err := s.opts.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return segment.Header{}, ioErr("open", path, err)
	}
	defer f.Close()

	h, err = segment.ReadHeader(f)
	if err != nil {
		return segment.Header{}, ioErr("read", path, err)
	}
	return h, nil
}

// ReadAll reads every vector in file order.
//
// It fails with ErrTruncated if the file is shorter than the header
// declares. Trailing bytes after the last vector are ignored.
func (s *Store) ReadAll(path string) (vectors [][]float32, err error) {
	defer s.observeRead("all", path, time.Now(), func() int { return len(vectors) }, &err)

	f, h, size, err := s.openSegment(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := h.CheckSize(size); err != nil {
		return nil, err
	}
	vectors, err = segment.ReadVectors(bufio.NewReaderSize(f, s.opts.bufferSize), h.Dimension, h.Count)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	return vectors, nil
}

// ReadAt reads the vector at index with a single seek. Its cost does not
// depend on index or on the number of vectors in the segment.
func (s *Store) ReadAt(path string, index uint32) (vector []float32, err error) {
	defer s.observeRead("at", path, time.Now(), func() int { return min(len(vector), 1) }, &err)

	f, h, size, err := s.openSegment(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := h.CheckIndex(index); err != nil {
		return nil, err
	}
	off, _, err := h.CheckRegion(index, 1, size)
	if err != nil {
		return nil, err
	}
	if err := seek(f, off); err != nil {
		return nil, ioErr("seek", path, err)
	}
	vector, err = segment.ReadVector(f, h.Dimension)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	return vector, nil
}

// ReadRange reads n contiguous vectors starting at start with a single seek.
// start+n is checked in 64 bits.
func (s *Store) ReadRange(path string, start, n uint32) (vectors [][]float32, err error) {
	defer s.observeRead("range", path, time.Now(), func() int { return len(vectors) }, &err)

	f, h, size, err := s.openSegment(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := h.CheckRange(start, n); err != nil {
		return nil, err
	}
	return s.readRun(f, path, h, size, start, n)
}

// readRun seeks once and reads n vectors from an open segment.
func (s *Store) readRun(f fs.File, path string, h segment.Header, size int64, start, n uint32) ([][]float32, error) {
	off, length, err := h.CheckRegion(start, n, size)
	if err != nil {
		return nil, err
	}
	if err := seek(f, off); err != nil {
		return nil, ioErr("seek", path, err)
	}
	bufSize := s.opts.bufferSize
	if length < uint64(bufSize) {
		bufSize = max(int(length), 16)
	}
	vectors, err := segment.ReadVectors(bufio.NewReaderSize(f, bufSize), h.Dimension, n)
	if err != nil {
		return nil, ioErr("read", path, err)
	}
	return vectors, nil
}

func (s *Store) observeRead(op, path string, start time.Time, vectors func() int, errp *error) {
	n := 0
	if *errp == nil {
		n = vectors()
	}
	s.opts.metricsCollector.RecordRead(op, n, time.Since(start), *errp)
	s.opts.logger.LogRead(context.Background(), op, path, n, *errp)
}

func seek(f io.Seeker, off uint64) error {
	o, err := conv.Uint64ToInt64(off)
	if err != nil {
		return err
	}
	_, err = f.Seek(o, io.SeekStart)
	return err
}
