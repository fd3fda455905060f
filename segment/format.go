package segment

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/vecseg/internal/conv"
)

const (
	// Version is the only format revision this package reads or writes.
	Version uint32 = 1

	// HeaderSize is the size of the encoded header in bytes: magic, version,
	// count and dimension, four bytes each, no padding.
	HeaderSize = 16

	// FloatSize is the on-disk size of one vector component.
	FloatSize = 4
)

// Magic identifies segment files ("VECT").
var Magic = [4]byte{'V', 'E', 'C', 'T'}

// Header is the fixed-size preamble of a segment file. Every byte offset
// used by readers derives from it.
//
// Layout (little-endian):
//
//	0  magic     [4]byte "VECT"
//	4  version   uint32
//	8  count     uint32
//	12 dimension uint32
//	16 count × dimension float32 components
type Header struct {
	Version   uint32
	Count     uint32
	Dimension uint32
}

// NewHeader returns a header of the supported version.
func NewHeader(count, dimension uint32) Header {
	return Header{Version: Version, Count: count, Dimension: dimension}
}

// Encode returns exactly HeaderSize bytes.
func (h Header) Encode() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the encoded header to b.
func (h Header) AppendTo(b []byte) []byte {
	b = append(b, Magic[:]...)
	b = binary.LittleEndian.AppendUint32(b, h.Version)
	b = binary.LittleEndian.AppendUint32(b, h.Count)
	b = binary.LittleEndian.AppendUint32(b, h.Dimension)
	return b
}

// DecodeHeader decodes a header from the first HeaderSize bytes of buf.
//
// Fields are checked in file order, so a short buffer whose magic is
// already wrong reports ErrInvalidFormat rather than ErrTruncated.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < len(Magic) {
		return Header{}, truncatedHeader(len(buf))
	}
	if [4]byte(buf[:4]) != Magic {
		return Header{}, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, buf[:4])
	}
	if len(buf) < 8 {
		return Header{}, truncatedHeader(len(buf))
	}
	h := Header{Version: binary.LittleEndian.Uint32(buf[4:])}
	if h.Version != Version {
		return Header{}, &VersionError{Got: h.Version, Want: Version}
	}
	if len(buf) < HeaderSize {
		return Header{}, truncatedHeader(len(buf))
	}
	h.Count = binary.LittleEndian.Uint32(buf[8:])
	h.Dimension = binary.LittleEndian.Uint32(buf[12:])
	return h, nil
}

// ReadHeader reads exactly HeaderSize bytes from r and decodes them.
// Errors from r other than a premature end of stream are returned as is.
func ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil && !isEOF(err) {
		return Header{}, err
	}
	return DecodeHeader(buf[:n])
}

func truncatedHeader(got int) error {
	return fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, HeaderSize, got)
}

// DataOffset is the byte offset of the first vector.
func (h Header) DataOffset() uint64 {
	return HeaderSize
}

// VectorByteSize is the encoded size of one vector.
func (h Header) VectorByteSize() uint64 {
	return uint64(h.Dimension) * FloatSize
}

// VectorOffset is the byte offset of the vector at index. It is a pure
// function of the header and does not check index against Count.
//
// Offsets saturate at math.MaxUint64 instead of wrapping.
func (h Header) VectorOffset(index uint32) uint64 {
	return conv.MulAddSat(uint64(index), h.VectorByteSize(), h.DataOffset())
}

// FileSize is the exact size of a well-formed segment with this header.
// It saturates at math.MaxUint64 for geometries no file can hold.
func (h Header) FileSize() uint64 {
	return conv.MulAddSat(uint64(h.Count), h.VectorByteSize(), h.DataOffset())
}

// PayloadSize is the size of the vector data following the header.
func (h Header) PayloadSize() uint64 {
	return conv.MulAddSat(uint64(h.Count), h.VectorByteSize(), 0)
}

// CheckIndex reports whether index addresses a stored vector.
func (h Header) CheckIndex(index uint32) error {
	if index >= h.Count {
		return &IndexOutOfBoundsError{Index: index, Count: h.Count}
	}
	return nil
}

// CheckRange reports whether [start, start+n) lies within the segment.
// The sum is computed in 64 bits.
func (h Header) CheckRange(start, n uint32) error {
	if uint64(start)+uint64(n) > uint64(h.Count) {
		return &RangeOutOfBoundsError{Start: start, Len: n, Count: h.Count}
	}
	return nil
}

// CheckSize reports whether a file of size bytes holds every vector the
// header declares. Trailing bytes are allowed.
func (h Header) CheckSize(size int64) error {
	if size < 0 || uint64(size) < h.FileSize() {
		return &TruncatedError{Expected: h.FileSize(), Actual: size}
	}
	return nil
}

// CheckRegion reports whether n vectors starting at index are fully present
// in a file of size bytes. It returns the region's offset and length.
func (h Header) CheckRegion(index, n uint32, size int64) (off, length uint64, err error) {
	off = h.VectorOffset(index)
	length = conv.MulAddSat(uint64(n), h.VectorByteSize(), 0)
	end := conv.MulAddSat(1, off, length)
	if size < 0 || end > uint64(size) {
		return 0, 0, &TruncatedError{Expected: end, Actual: size}
	}
	return off, length, nil
}

func (h Header) String() string {
	return fmt.Sprintf("segment v%d: %d vectors × %d dims (%d bytes)", h.Version, h.Count, h.Dimension, h.FileSize())
}
