package segment

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// readChunk bounds how much ReadVectors reads per call. Buffers grow with
// the bytes actually present, never with the declared count.
const readChunk = 64 * 1024

// MaxEmptyVectors caps how many zero-dimension vectors a segment may hold.
// They occupy no bytes, so the file size cannot bound the declared count.
const MaxEmptyVectors = 1 << 20

// CheckVectorCount reports whether n vectors of length dim may be
// materialized. Only zero-dimension vectors are limited; for any other
// dimension the bytes must be present before a vector is built.
func CheckVectorCount(dim, n uint32) error {
	if dim == 0 && n > MaxEmptyVectors {
		return fmt.Errorf("%w: %d zero-dimension vectors, limit %d", ErrTooLarge, n, MaxEmptyVectors)
	}
	return nil
}

// ReadVectors reads n vectors of length dim from r.
//
// If r ends before n vectors are complete, ReadVectors returns ErrTruncated.
// More than MaxEmptyVectors zero-dimension vectors fail with ErrTooLarge.
// Other read errors are returned as is.
func ReadVectors(r io.Reader, dim, n uint32) ([][]float32, error) {
	if err := CheckVectorCount(dim, n); err != nil {
		return nil, err
	}
	vecSize := uint64(dim) * FloatSize
	total := uint64(n) * vecSize

	out := make([][]float32, 0, min(uint64(n), readChunk))
	if vecSize == 0 {
		empty := []float32{}
		for range n {
			out = append(out, empty)
		}
		return out, nil
	}

	perChunk := max(1, readChunk/vecSize)
	buf := make([]byte, min(perChunk*vecSize, total))
	var read uint64
	for remaining := uint64(n); remaining > 0; {
		batch := min(perChunk, remaining)
		chunk := buf[:batch*vecSize]
		k, err := io.ReadFull(r, chunk)
		read += uint64(k)
		if err != nil {
			if isEOF(err) {
				return nil, &TruncatedError{Expected: total, Actual: int64(read)} //nolint:gosec // read <= total
			}
			return nil, err
		}
		flat := make([]float32, batch*uint64(dim))
		DecodeFloats(flat, chunk)
		for i := range batch {
			out = append(out, flat[i*uint64(dim):(i+1)*uint64(dim):(i+1)*uint64(dim)])
		}
		remaining -= batch
	}
	return out, nil
}

// ReadVector reads a single vector of length dim from r.
func ReadVector(r io.Reader, dim uint32) ([]float32, error) {
	vs, err := ReadVectors(r, dim, 1)
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

// DecodeFloats decodes len(dst) little-endian float32 values from src.
func DecodeFloats(dst []float32, src []byte) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*FloatSize:]))
	}
}

// Decode parses a complete in-memory segment. Bytes past the last vector
// are ignored.
func Decode(data []byte) (Header, [][]float32, error) {
	h, err := DecodeHeader(data)
	if err != nil {
		return Header{}, nil, err
	}
	if err := h.CheckSize(int64(len(data))); err != nil {
		return Header{}, nil, err
	}
	if err := CheckVectorCount(h.Dimension, h.Count); err != nil {
		return Header{}, nil, err
	}
	return h, DecodeVectors(data[h.DataOffset():], h.Dimension, h.Count), nil
}

// DecodeVectors decodes n contiguous vectors of length dim from data. data
// must hold at least n*dim*FloatSize bytes and n must pass
// CheckVectorCount.
func DecodeVectors(data []byte, dim, n uint32) [][]float32 {
	d := uint64(dim)
	flat := make([]float32, uint64(n)*d)
	DecodeFloats(flat, data)
	out := make([][]float32, n)
	for i := range out {
		lo := uint64(i) * d
		out[i] = flat[lo : lo+d : lo+d]
	}
	return out
}

// VectorAt decodes the vector at index from an in-memory segment whose
// header has already been decoded.
func VectorAt(data []byte, h Header, index uint32) ([]float32, error) {
	if err := h.CheckIndex(index); err != nil {
		return nil, err
	}
	off, length, err := h.CheckRegion(index, 1, int64(len(data)))
	if err != nil {
		return nil, err
	}
	v := make([]float32, h.Dimension)
	DecodeFloats(v, data[off:off+length])
	return v, nil
}
