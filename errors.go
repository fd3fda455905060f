package vecseg

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecseg/segment"
)

// Errors returned by segment operations. They are the sentinels of package
// segment, re-exported so callers need a single import.
var (
	ErrInvalidFormat      = segment.ErrInvalidFormat
	ErrUnsupportedVersion = segment.ErrUnsupportedVersion
	ErrTruncated          = segment.ErrTruncated
	ErrDimensionMismatch  = segment.ErrDimensionMismatch
	ErrIndexOutOfBounds   = segment.ErrIndexOutOfBounds
	ErrRangeOutOfBounds   = segment.ErrRangeOutOfBounds
	ErrTooLarge           = segment.ErrTooLarge
)

var (
	// ErrMetadataMismatch is returned when a metadata sidecar does not
	// describe the same number of vectors as its segment.
	ErrMetadataMismatch = errors.New("vecseg: metadata count does not match segment")

	// ErrClosed is returned by a BlobReader after Close.
	ErrClosed = errors.New("vecseg: reader closed")
)

// Typed errors carrying the offending values.
type (
	VersionError           = segment.VersionError
	TruncatedError         = segment.TruncatedError
	DimensionMismatchError = segment.DimensionMismatchError
	IndexOutOfBoundsError  = segment.IndexOutOfBoundsError
	RangeOutOfBoundsError  = segment.RangeOutOfBoundsError
	IOError                = segment.IOError
)

// MetadataCountError reports a sidecar whose entry count differs from the
// segment's vector count.
type MetadataCountError struct {
	Path     string
	Segment  uint32
	Metadata uint32
}

func (e *MetadataCountError) Error() string {
	return fmt.Sprintf("vecseg: %s: metadata has %d entries, segment has %d vectors", e.Path, e.Metadata, e.Segment)
}

func (e *MetadataCountError) Is(target error) bool { return target == ErrMetadataMismatch }

// ioErr attaches op and path to storage failures. Format and bounds errors
// pass through unchanged.
func ioErr(op, path string, err error) error {
	return segment.WrapIO(op, path, err)
}
