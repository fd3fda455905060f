package segment

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/vecseg/internal/conv"
)

// Validate checks that every vector has the dimension of the first one and
// that the count and dimension fit the header. It returns the header the
// vectors would be written under.
//
// An empty slice is valid and yields a header with zero count and dimension.
func Validate(vectors [][]float32) (Header, error) {
	count, err := conv.IntToUint32(len(vectors))
	if err != nil {
		return Header{}, fmt.Errorf("%w: %d vectors", ErrTooLarge, len(vectors))
	}
	if count == 0 {
		return NewHeader(0, 0), nil
	}
	dim := len(vectors[0])
	d, err := conv.IntToUint32(dim)
	if err != nil {
		return Header{}, fmt.Errorf("%w: dimension %d", ErrTooLarge, dim)
	}
	for i, v := range vectors[1:] {
		if len(v) != dim {
			return Header{}, &DimensionMismatchError{Expected: dim, Got: len(v), Index: i + 1}
		}
	}
	if err := CheckVectorCount(d, count); err != nil {
		return Header{}, err
	}
	return NewHeader(count, d), nil
}

// Encode writes vectors as a complete segment to w. The vectors are
// validated before anything is written, so a DimensionMismatchError leaves
// w untouched. It returns the header that was written.
func Encode(w io.Writer, vectors [][]float32) (Header, error) {
	h, err := Validate(vectors)
	if err != nil {
		return Header{}, err
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(h.Encode()); err != nil {
		return Header{}, err
	}
	var buf []byte
	for _, v := range vectors {
		buf = AppendVector(buf[:0], v)
		if _, err := bw.Write(buf); err != nil {
			return Header{}, err
		}
	}
	if err := bw.Flush(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// AppendVector appends the little-endian encoding of v to b.
func AppendVector(b []byte, v []float32) []byte {
	for _, f := range v {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(f))
	}
	return b
}

// Writer streams a segment whose vector count is not known up front.
//
// The header is written with a zero count and patched on Flush, so the
// destination must also implement io.WriteSeeker.
type Writer struct {
	ws    io.WriteSeeker
	bw    *bufio.Writer
	dim   int
	count uint32
	buf   []byte
	err   error
}

// NewWriter creates a writer for vectors of length dim and writes a
// placeholder header.
func NewWriter(ws io.WriteSeeker, dim int, bufSize int) (*Writer, error) {
	d, err := conv.IntToUint32(dim)
	if err != nil {
		return nil, fmt.Errorf("%w: dimension %d", ErrTooLarge, dim)
	}
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &Writer{
		ws:  ws,
		bw:  bufio.NewWriterSize(ws, bufSize),
		dim: dim,
	}
	if _, err := w.bw.Write(NewHeader(0, d).Encode()); err != nil {
		return nil, err
	}
	return w, nil
}

// Add appends one vector. The first failed write poisons the writer.
func (w *Writer) Add(v []float32) error {
	if w.err != nil {
		return w.err
	}
	if len(v) != w.dim {
		return &DimensionMismatchError{Expected: w.dim, Got: len(v), Index: int(w.count)}
	}
	if w.count == math.MaxUint32 {
		return fmt.Errorf("%w: more than %d vectors", ErrTooLarge, uint32(math.MaxUint32))
	}
	if w.dim == 0 {
		if err := CheckVectorCount(0, w.count+1); err != nil {
			return err
		}
	}
	w.buf = AppendVector(w.buf[:0], v)
	if _, err := w.bw.Write(w.buf); err != nil {
		w.err = err
		return err
	}
	w.count++
	return nil
}

// Len returns the number of vectors added so far.
func (w *Writer) Len() int { return int(w.count) }

// Dimension returns the vector length this writer accepts.
func (w *Writer) Dimension() int { return w.dim }

// Flush writes buffered vectors and patches the header count. The writer is
// left positioned at the end of the data.
func (w *Writer) Flush() (Header, error) {
	if w.err != nil {
		return Header{}, w.err
	}
	h := NewHeader(w.count, uint32(w.dim)) //nolint:gosec // checked in NewWriter
	if err := w.bw.Flush(); err != nil {
		w.err = err
		return Header{}, err
	}
	if _, err := w.ws.Seek(0, io.SeekStart); err != nil {
		w.err = err
		return Header{}, err
	}
	if _, err := w.ws.Write(h.Encode()); err != nil {
		w.err = err
		return Header{}, err
	}
	if _, err := w.ws.Seek(0, io.SeekEnd); err != nil {
		w.err = err
		return Header{}, err
	}
	return h, nil
}
