//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntToUint32(t *testing.T) {
	got, err := IntToUint32(123)
	assert.NoError(t, err)
	assert.Equal(t, uint32(123), got)

	got, err = IntToUint32(math.MaxUint32)
	assert.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), got)

	_, err = IntToUint32(-1)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = IntToUint32(math.MaxUint32 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestUint64ToInt(t *testing.T) {
	got, err := Uint64ToInt(42)
	assert.NoError(t, err)
	assert.Equal(t, 42, got)

	_, err = Uint64ToInt(math.MaxUint64)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestUint64ToInt64(t *testing.T) {
	got, err := Uint64ToInt64(math.MaxInt64)
	assert.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)

	_, err = Uint64ToInt64(math.MaxInt64 + 1)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMulAddSat(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c uint64
		want    uint64
	}{
		{"small", 3, 12, 16, 52},
		{"zero", 0, math.MaxUint64, 16, 16},
		{"mul overflow", math.MaxUint32, math.MaxUint32 * 4, 16, math.MaxUint64},
		{"largest segment", math.MaxUint32, 1 << 20, 16, 16 + (math.MaxUint32 << 20)},
		{"saturates", math.MaxUint64, 2, 0, math.MaxUint64},
		{"add carry", math.MaxUint64, 1, 1, math.MaxUint64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MulAddSat(tt.a, tt.b, tt.c))
		})
	}
}
