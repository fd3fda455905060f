package segment

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncode(t *testing.T) {
	h := NewHeader(3, 4)
	b := h.Encode()
	require.Len(t, b, HeaderSize)
	assert.Equal(t, []byte{
		'V', 'E', 'C', 'T',
		1, 0, 0, 0,
		3, 0, 0, 0,
		4, 0, 0, 0,
	}, b)

	got, err := DecodeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestHeaderOffsets(t *testing.T) {
	h := NewHeader(3, 4)
	assert.Equal(t, uint64(16), h.DataOffset())
	assert.Equal(t, uint64(16), h.VectorByteSize())
	assert.Equal(t, uint64(16), h.VectorOffset(0))
	assert.Equal(t, uint64(48), h.VectorOffset(2))
	assert.Equal(t, uint64(64), h.FileSize())
	assert.Equal(t, uint64(48), h.PayloadSize())

	// VectorOffset does not check bounds.
	assert.Equal(t, uint64(16+100*16), h.VectorOffset(100))

	empty := NewHeader(0, 0)
	assert.Equal(t, uint64(HeaderSize), empty.FileSize())

	huge := NewHeader(math.MaxUint32, math.MaxUint32)
	assert.Equal(t, uint64(math.MaxUint64), huge.FileSize())
}

func TestDecodeHeaderErrors(t *testing.T) {
	valid := NewHeader(2, 8).Encode()

	tests := []struct {
		name string
		buf  []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"short magic", []byte("VEC"), ErrTruncated},
		{"bad magic", []byte("XXXX\x01\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00"), ErrInvalidFormat},
		{"bad magic short", []byte("XXXX"), ErrInvalidFormat},
		{"lowercase magic", append([]byte("vect"), valid[4:]...), ErrInvalidFormat},
		{"missing version", valid[:6], ErrTruncated},
		{"bad version", append(append([]byte("VECT"), 2, 0, 0, 0), valid[8:]...), ErrUnsupportedVersion},
		{"bad version short", []byte("VECT\x00\x00\x00\x00"), ErrUnsupportedVersion},
		{"missing count", valid[:10], ErrTruncated},
		{"missing dimension", valid[:15], ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHeader(tt.buf)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsFormatError(err))
		})
	}
}

func TestVersionError(t *testing.T) {
	buf := NewHeader(1, 1).Encode()
	buf[4] = 7

	_, err := DecodeHeader(buf)
	var ve *VersionError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, uint32(7), ve.Got)
	assert.Equal(t, Version, ve.Want)
	assert.Contains(t, err.Error(), "expected 1, got 7")
}

func TestReadHeader(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := bytes.NewReader(append(NewHeader(5, 2).Encode(), 0xAA, 0xBB))
		h, err := ReadHeader(r)
		require.NoError(t, err)
		assert.Equal(t, NewHeader(5, 2), h)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("short", func(t *testing.T) {
		_, err := ReadHeader(bytes.NewReader([]byte("VECT\x01\x00")))
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("reader error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := ReadHeader(errReader{boom})
		assert.ErrorIs(t, err, boom)
		assert.False(t, IsFormatError(err))
	})
}

func TestHeaderChecks(t *testing.T) {
	h := NewHeader(3, 2)

	require.NoError(t, h.CheckIndex(2))
	var ie *IndexOutOfBoundsError
	require.ErrorAs(t, h.CheckIndex(3), &ie)
	assert.Equal(t, uint32(3), ie.Index)
	assert.Equal(t, uint32(3), ie.Count)
	assert.ErrorIs(t, h.CheckIndex(3), ErrIndexOutOfBounds)

	require.NoError(t, h.CheckRange(0, 3))
	require.NoError(t, h.CheckRange(3, 0))
	assert.ErrorIs(t, h.CheckRange(2, 2), ErrRangeOutOfBounds)
	assert.ErrorIs(t, h.CheckRange(4, 0), ErrRangeOutOfBounds)
	// start+len must not wrap in 32 bits.
	assert.ErrorIs(t, h.CheckRange(math.MaxUint32, 2), ErrRangeOutOfBounds)

	require.NoError(t, h.CheckSize(40))
	require.NoError(t, h.CheckSize(41))
	var te *TruncatedError
	require.ErrorAs(t, h.CheckSize(39), &te)
	assert.Equal(t, uint64(40), te.Expected)
	assert.Equal(t, int64(39), te.Actual)
	assert.ErrorIs(t, h.CheckSize(39), ErrTruncated)

	off, n, err := h.CheckRegion(1, 2, 40)
	require.NoError(t, err)
	assert.Equal(t, uint64(24), off)
	assert.Equal(t, uint64(16), n)
	_, _, err = h.CheckRegion(2, 1, 39)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestWrapIO(t *testing.T) {
	boom := errors.New("disk on fire")

	assert.NoError(t, WrapIO("read", "a.seg", nil))

	err := WrapIO("read", "a.seg", boom)
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, "read", ioe.Op)
	assert.Equal(t, "a.seg", ioe.Path)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "segment: read a.seg: disk on fire", err.Error())

	assert.Same(t, err, WrapIO("write", "b.seg", err))
	assert.Same(t, ErrTruncated, WrapIO("read", "a.seg", ErrTruncated))
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
