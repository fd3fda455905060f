package vecseg

import (
	"bufio"
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/vecseg/blobstore"
	"github.com/hupe1980/vecseg/internal/conv"
	"github.com/hupe1980/vecseg/segment"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// TracerName is the instrumentation name of spans started by BlobReader.
const TracerName = "github.com/hupe1980/vecseg"

// manyConcurrency bounds the ranged reads BlobReader.Many keeps in flight.
const manyConcurrency = 8

// BlobReader reads a segment stored in a blob.
//
// The header is read and checked against the blob size once, in OpenBlob.
// Every read after that fetches only the bytes of the vectors it returns.
// Blobs implementing blobstore.Mappable are decoded in place without
// ReadAt. A BlobReader is safe for concurrent use.
type BlobReader struct {
	s    *Store
	name string
	blob blobstore.Blob
	h    segment.Header
	size int64

	// mapped is fixed at open; data is cleared by Close under mu.
	mapped bool
	mu     sync.RWMutex
	data   []byte

	closed atomic.Bool
}

// OpenBlob opens the segment held in blob using the default Store.
func OpenBlob(ctx context.Context, blob blobstore.Blob) (*BlobReader, error) {
	return defaultStore.OpenBlob(ctx, blob)
}

// OpenSegment opens the blob called name in bs using the default Store.
func OpenSegment(ctx context.Context, bs blobstore.BlobStore, name string) (*BlobReader, error) {
	return defaultStore.OpenSegment(ctx, bs, name)
}

// PutSegment encodes vectors into the blob called name using the default Store.
func PutSegment(ctx context.Context, bs blobstore.BlobStore, name string, vectors [][]float32) error {
	return defaultStore.PutSegment(ctx, bs, name, vectors)
}

// OpenBlob reads and validates the header of the segment held in blob.
//
// It fails with ErrTruncated if the blob is shorter than the header
// declares. On success the returned reader owns blob and closes it in
// Close; on failure the caller keeps ownership.
func (s *Store) OpenBlob(ctx context.Context, blob blobstore.Blob) (*BlobReader, error) {
	return s.openBlob(ctx, "", blob)
}

// OpenSegment opens the blob called name in bs and validates its header.
func (s *Store) OpenSegment(ctx context.Context, bs blobstore.BlobStore, name string) (*BlobReader, error) {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, ioErr("open", name, err)
	}
	r, err := s.openBlob(ctx, name, blob)
	if err != nil {
		_ = blob.Close()
		return nil, err
	}
	return r, nil
}

func (s *Store) openBlob(ctx context.Context, name string, blob blobstore.Blob) (r *BlobReader, err error) {
	ctx, span := startSpan(ctx, "open", name)
	defer func() { endSpan(span, err) }()

	data, mapped := mappedBytes(blob)
	var h segment.Header
	size := blob.Size()
	if mapped {
		size = int64(len(data))
		h, err = segment.DecodeHeader(data)
	} else {
		h, err = readBlobHeader(ctx, name, blob)
	}
	if err != nil {
		return nil, err
	}
	if err := h.CheckSize(size); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("segment.count", int64(h.Count)),
		attribute.Int64("segment.dimension", int64(h.Dimension)),
		attribute.Int64("segment.payload_bytes", int64(min(h.PayloadSize(), math.MaxInt64))), //nolint:gosec // clamped
		attribute.Int64("blob.size", size),
		attribute.Bool("blob.mapped", mapped),
	)
	return &BlobReader{s: s, name: name, blob: blob, h: h, size: size, mapped: mapped, data: data}, nil
}

// mappedBytes returns the in-memory contents of blob if it offers them.
func mappedBytes(blob blobstore.Blob) ([]byte, bool) {
	m, ok := blob.(blobstore.Mappable)
	if !ok {
		return nil, false
	}
	data, err := m.Bytes()
	if err != nil || data == nil {
		return nil, false
	}
	return data, true
}

func readBlobHeader(ctx context.Context, name string, blob blobstore.Blob) (segment.Header, error) {
	buf := make([]byte, segment.HeaderSize)
	n, err := blob.ReadAt(ctx, buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return segment.Header{}, ioErr("read", name, err)
	}
	return segment.DecodeHeader(buf[:n])
}

// Header returns the decoded segment header.
func (r *BlobReader) Header() segment.Header {
	return r.h
}

// Name returns the blob name given to OpenSegment, or "" for OpenBlob.
func (r *BlobReader) Name() string {
	return r.name
}

// At reads the vector at index with one ranged read.
func (r *BlobReader) At(ctx context.Context, index uint32) (vector []float32, err error) {
	ctx, done := r.observe(ctx, "at", func() int { return min(len(vector), 1) }, &err)
	defer done()

	if err := r.check(); err != nil {
		return nil, err
	}
	if err := r.h.CheckIndex(index); err != nil {
		return nil, err
	}
	if r.mapped {
		err = r.withData(func(data []byte) error {
			vector, err = segment.VectorAt(data, r.h, index)
			return err
		})
		return vector, err
	}
	vs, err := r.readRun(ctx, index, 1)
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

// Range reads n contiguous vectors starting at start with one ranged read.
func (r *BlobReader) Range(ctx context.Context, start, n uint32) (vectors [][]float32, err error) {
	ctx, done := r.observe(ctx, "range", func() int { return len(vectors) }, &err)
	defer done()

	if err := r.check(); err != nil {
		return nil, err
	}
	if err := r.h.CheckRange(start, n); err != nil {
		return nil, err
	}
	return r.readRun(ctx, start, n)
}

// All reads every vector in order, streaming the payload through a
// buffered section reader.
func (r *BlobReader) All(ctx context.Context) (vectors [][]float32, err error) {
	ctx, done := r.observe(ctx, "all", func() int { return len(vectors) }, &err)
	defer done()

	if err := r.check(); err != nil {
		return nil, err
	}
	if r.mapped {
		err = r.withData(func(data []byte) error {
			_, vectors, err = segment.Decode(data)
			return err
		})
		return vectors, err
	}
	off, length, err := r.h.CheckRegion(0, r.h.Count, r.size)
	if err != nil {
		return nil, err
	}
	sr, err := r.section(ctx, off, length)
	if err != nil {
		return nil, err
	}
	vectors, err = segment.ReadVectors(bufio.NewReaderSize(sr, r.s.opts.bufferSize), r.h.Dimension, r.h.Count)
	if err != nil {
		return nil, ioErr("read", r.name, err)
	}
	return vectors, nil
}

// Many reads the vectors at indices, returned in the order of indices.
// Contiguous indices share one ranged read and runs are fetched in parallel.
func (r *BlobReader) Many(ctx context.Context, indices []uint32) (vectors [][]float32, err error) {
	ctx, done := r.observe(ctx, "many", func() int { return len(vectors) }, &err)
	defer done()

	if err := r.check(); err != nil {
		return nil, err
	}
	bm, runs, err := planRuns(r.h, indices)
	if err != nil {
		return nil, err
	}

	fetched := make([][][]float32, len(runs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(manyConcurrency)
	for i, rn := range runs {
		g.Go(func() error {
			vs, err := r.readRun(gctx, rn.start, rn.n)
			if err != nil {
				return err
			}
			fetched[i] = vs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sorted := make([][]float32, 0, bm.GetCardinality())
	for _, vs := range fetched {
		sorted = append(sorted, vs...)
	}
	return scatter(indices, bm, sorted), nil
}

// Close releases the underlying blob. Reads after Close fail with ErrClosed.
func (r *BlobReader) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
	return r.blob.Close()
}

// withData runs fn over the mapped blob contents, keeping Close from
// unmapping them until fn returns.
func (r *BlobReader) withData(fn func(data []byte) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.data == nil {
		return ErrClosed
	}
	return fn(r.data)
}

func (r *BlobReader) check() error {
	if r.closed.Load() {
		return ErrClosed
	}
	return nil
}

// readRun fetches n vectors starting at start in a single ReadAt.
func (r *BlobReader) readRun(ctx context.Context, start, n uint32) ([][]float32, error) {
	if err := segment.CheckVectorCount(r.h.Dimension, n); err != nil {
		return nil, err
	}
	off, length, err := r.h.CheckRegion(start, n, r.size)
	if err != nil {
		return nil, err
	}
	if r.mapped {
		var vs [][]float32
		err := r.withData(func(data []byte) error {
			vs = segment.DecodeVectors(data[off:off+length], r.h.Dimension, n)
			return nil
		})
		return vs, err
	}
	size, err := conv.Uint64ToInt(length)
	if err != nil {
		return nil, err
	}
	o, err := conv.Uint64ToInt64(off)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	k, err := r.blob.ReadAt(ctx, buf, o)
	if err != nil && !(errors.Is(err, io.EOF) && k == size) {
		if errors.Is(err, io.EOF) {
			return nil, &segment.TruncatedError{Expected: off + length, Actual: o + int64(k)}
		}
		return nil, ioErr("read", r.name, err)
	}
	return segment.DecodeVectors(buf, r.h.Dimension, n), nil
}

func (r *BlobReader) section(ctx context.Context, off, length uint64) (*io.SectionReader, error) {
	o, err := conv.Uint64ToInt64(off)
	if err != nil {
		return nil, err
	}
	n, err := conv.Uint64ToInt64(length)
	if err != nil {
		return nil, err
	}
	return blobstore.NewSectionReader(ctx, r.blob, o, n), nil
}

// observe starts a span for op and returns a func that ends it and records
// metrics and logs from *errp.
func (r *BlobReader) observe(ctx context.Context, op string, vectors func() int, errp *error) (context.Context, func()) {
	start := time.Now()
	ctx, span := startSpan(ctx, op, r.name)
	return ctx, func() {
		n := 0
		if *errp == nil {
			n = vectors()
			span.SetAttributes(attribute.Int("segment.vectors", n))
		}
		endSpan(span, *errp)
		r.s.opts.metricsCollector.RecordRead("blob."+op, n, time.Since(start), *errp)
		r.s.opts.logger.LogRead(ctx, "blob."+op, r.name, n, *errp)
	}
}

// PutSegment encodes vectors straight into a new blob called name.
//
// Dimensions are validated before the blob is created. If encoding or the
// upload fails, the blob is aborted and name is left as it was.
func (s *Store) PutSegment(ctx context.Context, bs blobstore.BlobStore, name string, vectors [][]float32) (err error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "put", name)
	var h segment.Header
	defer func() {
		endSpan(span, err)
		if err != nil {
			s.opts.metricsCollector.RecordWrite(0, 0, time.Since(start), err)
			s.opts.logger.LogUpload(ctx, name, 0, err)
			return
		}
		s.opts.metricsCollector.RecordWrite(int(h.Count), int64(h.FileSize()), time.Since(start), nil) //nolint:gosec // bounded by written bytes
		s.opts.logger.LogUpload(ctx, name, h.FileSize(), nil)
	}()

	h, err = segment.Validate(vectors)
	if err != nil {
		return err
	}
	wb, err := bs.Create(ctx, name)
	if err != nil {
		return ioErr("create", name, err)
	}
	bw := bufio.NewWriterSize(wb, s.opts.bufferSize)
	if _, err := segment.Encode(bw, vectors); err != nil {
		_ = wb.Abort()
		return ioErr("write", name, err)
	}
	if err := bw.Flush(); err != nil {
		_ = wb.Abort()
		return ioErr("write", name, err)
	}
	if err := wb.Close(); err != nil {
		_ = wb.Abort()
		return ioErr("close", name, err)
	}
	return nil
}

func startSpan(ctx context.Context, op, name string) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "vecseg.blob."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("blob.name", name)),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
