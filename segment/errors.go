package segment

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidFormat is returned when the magic bytes do not identify a segment.
	ErrInvalidFormat = errors.New("segment: invalid format")

	// ErrUnsupportedVersion is matched by *VersionError.
	ErrUnsupportedVersion = errors.New("segment: unsupported version")

	// ErrTruncated is returned when the data ends before the declared geometry.
	// It is matched by *TruncatedError.
	ErrTruncated = errors.New("segment: truncated input")

	// ErrDimensionMismatch is matched by *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("segment: dimension mismatch")

	// ErrIndexOutOfBounds is matched by *IndexOutOfBoundsError.
	ErrIndexOutOfBounds = errors.New("segment: index out of bounds")

	// ErrRangeOutOfBounds is matched by *RangeOutOfBoundsError.
	ErrRangeOutOfBounds = errors.New("segment: range out of bounds")

	// ErrTooLarge is returned when a count or dimension does not fit 32 bits.
	ErrTooLarge = errors.New("segment: exceeds format limits")
)

// VersionError indicates a segment written by a different format revision.
type VersionError struct {
	Got  uint32
	Want uint32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("segment: unsupported version: expected %d, got %d", e.Want, e.Got)
}

func (e *VersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// TruncatedError indicates that fewer bytes are present than the header declares.
type TruncatedError struct {
	Expected uint64
	Actual   int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("segment: truncated input: need %d bytes, have %d", e.Expected, e.Actual)
}

func (e *TruncatedError) Is(target error) bool { return target == ErrTruncated }

// DimensionMismatchError indicates a vector whose length differs from the
// dimension established by the first vector of the segment.
type DimensionMismatchError struct {
	Expected int
	Got      int
	Index    int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("segment: dimension mismatch at vector %d: expected %d, got %d", e.Index, e.Expected, e.Got)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// IndexOutOfBoundsError indicates a read outside [0, Count).
type IndexOutOfBoundsError struct {
	Index uint32
	Count uint32
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("segment: index %d out of bounds (count %d)", e.Index, e.Count)
}

func (e *IndexOutOfBoundsError) Is(target error) bool { return target == ErrIndexOutOfBounds }

// RangeOutOfBoundsError indicates a range read past Count.
type RangeOutOfBoundsError struct {
	Start uint32
	Len   uint32
	Count uint32
}

func (e *RangeOutOfBoundsError) Error() string {
	return fmt.Sprintf("segment: range %d..%d out of bounds (count %d)", e.Start, uint64(e.Start)+uint64(e.Len), e.Count)
}

func (e *RangeOutOfBoundsError) Is(target error) bool { return target == ErrRangeOutOfBounds }

// IOError wraps a failure of the underlying storage.
//
// The original cause can be accessed via errors.Unwrap.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("segment: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("segment: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsFormatError reports whether err describes the segment contents or the
// caller's request rather than a storage failure.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrUnsupportedVersion) ||
		errors.Is(err, ErrTruncated) ||
		errors.Is(err, ErrDimensionMismatch) ||
		errors.Is(err, ErrIndexOutOfBounds) ||
		errors.Is(err, ErrRangeOutOfBounds) ||
		errors.Is(err, ErrTooLarge)
}

// WrapIO wraps err in an *IOError unless it is nil, already an *IOError,
// or a format error.
func WrapIO(op, path string, err error) error {
	if err == nil || IsFormatError(err) {
		return err
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
