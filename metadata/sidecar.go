package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hupe1980/vecseg/internal/conv"
	"github.com/hupe1980/vecseg/internal/hash"
	"github.com/hupe1980/vecseg/segment"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	// Version is the only sidecar version this package reads and writes.
	Version uint32 = 1
	// HeaderSize is the size of the fixed sidecar header.
	HeaderSize = 16
	// Ext is appended to a segment path to name its sidecar.
	Ext = ".meta"
)

// Magic identifies a metadata sidecar.
var Magic = [4]byte{'V', 'M', 'E', 'T'}

// Document holds the tags of one vector. A nil Document means no tags.
type Document map[string]string

// Path returns the sidecar path for the segment at segmentPath.
func Path(segmentPath string) string {
	return segmentPath + Ext
}

// Encode writes docs as a sidecar to w.
func Encode(w io.Writer, docs []Document) error {
	count, err := conv.IntToUint32(len(docs))
	if err != nil {
		return fmt.Errorf("%w: %d documents", segment.ErrTooLarge, len(docs))
	}

	var payload bytes.Buffer
	enc := msgpack.NewEncoder(&payload)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(docs); err != nil {
		return err
	}

	hdr := make([]byte, HeaderSize)
	copy(hdr, Magic[:])
	binary.LittleEndian.PutUint32(hdr[4:], Version)
	binary.LittleEndian.PutUint32(hdr[8:], count)
	binary.LittleEndian.PutUint32(hdr[12:], hash.CRC32C(payload.Bytes()))

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	_, err = w.Write(payload.Bytes())
	return err
}

// Decode parses a complete sidecar.
//
// It fails with segment.ErrInvalidFormat on a bad magic, checksum or entry
// count, with *segment.VersionError on an unknown version and with
// segment.ErrTruncated if data ends inside the header.
func Decode(data []byte) ([]Document, error) {
	if len(data) < 4 {
		return nil, truncated(len(data))
	}
	if !bytes.Equal(data[:4], Magic[:]) {
		return nil, fmt.Errorf("%w: bad sidecar magic %q", segment.ErrInvalidFormat, data[:4])
	}
	if len(data) < 8 {
		return nil, truncated(len(data))
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != Version {
		return nil, &segment.VersionError{Got: v, Want: Version}
	}
	if len(data) < HeaderSize {
		return nil, truncated(len(data))
	}
	count := binary.LittleEndian.Uint32(data[8:])
	sum := binary.LittleEndian.Uint32(data[12:])

	payload := data[HeaderSize:]
	if got := hash.CRC32C(payload); got != sum {
		return nil, fmt.Errorf("%w: sidecar checksum %08x, want %08x", segment.ErrInvalidFormat, got, sum)
	}

	var docs []Document
	if err := msgpack.Unmarshal(payload, &docs); err != nil {
		return nil, fmt.Errorf("%w: %v", segment.ErrInvalidFormat, err)
	}
	if uint64(len(docs)) != uint64(count) {
		return nil, fmt.Errorf("%w: sidecar declares %d documents, holds %d", segment.ErrInvalidFormat, count, len(docs))
	}
	return docs, nil
}

// Read reads a whole sidecar from r.
func Read(r io.Reader) ([]Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func truncated(got int) error {
	return fmt.Errorf("%w: sidecar header needs %d bytes, got %d", segment.ErrTruncated, HeaderSize, got)
}
