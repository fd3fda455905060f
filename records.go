package vecseg

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/hupe1980/vecseg/metadata"
	"github.com/hupe1980/vecseg/segment"
)

// Record is a vector together with its tags.
type Record struct {
	Vector   []float32         `json:"vector"`
	Metadata metadata.Document `json:"metadata,omitempty"`
}

// WriteRecords writes records to path using the default Store.
func WriteRecords(path string, records []Record) error {
	return defaultStore.WriteRecords(path, records)
}

// ReadRecords reads the vectors and tags at path using the default Store.
func ReadRecords(path string) ([]Record, error) {
	return defaultStore.ReadRecords(path)
}

// WriteRecords writes the vectors of records to path and their tags to the
// sidecar at metadata.Path(path).
//
// Any existing sidecar is removed before the segment is replaced, and the
// new one is written after it. If a step fails, path is left with no
// sidecar at all, which ReadMetadata reports as missing.
func (s *Store) WriteRecords(path string, records []Record) error {
	vectors := make([][]float32, len(records))
	docs := make([]metadata.Document, len(records))
	for i, r := range records {
		vectors[i] = r.Vector
		docs[i] = r.Metadata
	}
	if _, err := segment.Validate(vectors); err != nil {
		return err
	}

	side := metadata.Path(path)
	if err := s.opts.fs.Remove(side); err != nil && !errors.Is(err, os.ErrNotExist) {
		return ioErr("remove", side, err)
	}
	if err := s.Write(path, vectors); err != nil {
		return err
	}

	err := s.writeFile(side, func(w io.Writer) error {
		return metadata.Encode(w, docs)
	})
	if err != nil {
		s.opts.logger.ErrorContext(context.Background(), "metadata write failed", "path", side, "error", err)
		return err
	}
	s.opts.logger.DebugContext(context.Background(), "metadata written", "path", side, "documents", len(docs))
	return nil
}

// ReadMetadata reads the sidecar of the segment at path.
//
// A sidecar whose document count differs from the segment's vector count
// fails with *MetadataCountError. A missing sidecar is an *IOError wrapping
// os.ErrNotExist.
func (s *Store) ReadMetadata(path string) (docs []metadata.Document, err error) {
	defer s.observeRead("metadata", path, time.Now(), func() int { return len(docs) }, &err)

	h, err := s.ReadHeader(path)
	if err != nil {
		return nil, err
	}

	side := metadata.Path(path)
	f, err := s.opts.fs.OpenFile(side, os.O_RDONLY, 0)
	if err != nil {
		return nil, ioErr("open", side, err)
	}
	defer f.Close()

	docs, err = metadata.Read(f)
	if err != nil {
		return nil, ioErr("read", side, err)
	}
	if uint64(len(docs)) != uint64(h.Count) {
		return nil, &MetadataCountError{Path: side, Segment: h.Count, Metadata: uint32(len(docs))} //nolint:gosec // decoded count is a uint32
	}
	return docs, nil
}

// ReadRecords reads every vector at path paired with its tags.
func (s *Store) ReadRecords(path string) ([]Record, error) {
	vectors, err := s.ReadAll(path)
	if err != nil {
		return nil, err
	}
	docs, err := s.ReadMetadata(path)
	if err != nil {
		return nil, err
	}
	if len(docs) != len(vectors) {
		// The segment changed between the two reads.
		return nil, &MetadataCountError{Path: metadata.Path(path), Segment: uint32(len(vectors)), Metadata: uint32(len(docs))} //nolint:gosec // both bounded by uint32 headers
	}
	records := make([]Record, len(vectors))
	for i := range vectors {
		records[i] = Record{Vector: vectors[i], Metadata: docs[i]}
	}
	return records, nil
}
