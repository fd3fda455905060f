package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopK(t *testing.T) {
	vectors := [][]float32{
		{1, 0},
		{0, 1},
		{0.9, 0.1},
		{-1, 0},
	}
	query := []float32{1, 0}

	t.Run("Cosine", func(t *testing.T) {
		res, err := TopK(MetricCosine, vectors, query, 2)
		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, uint32(0), res[0].Index)
		assert.Equal(t, uint32(2), res[1].Index)
	})

	t.Run("Euclidean", func(t *testing.T) {
		res, err := TopK(MetricEuclidean, vectors, query, 10)
		require.NoError(t, err)
		require.Len(t, res, 4)
		assert.Equal(t, []uint32{0, 2, 1, 3}, indices(res))
		assert.Equal(t, float32(0), res[0].Score)
		assert.InDelta(t, float32(2), res[3].Score, 1e-6)
	})

	t.Run("TiesKeepOrder", func(t *testing.T) {
		res, err := TopK(MetricDot, [][]float32{{1}, {1}, {2}}, []float32{1}, -1)
		require.NoError(t, err)
		assert.Equal(t, []uint32{2, 0, 1}, indices(res))
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := TopK(MetricDot, [][]float32{{1, 2}}, []float32{1}, 1)
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("Empty", func(t *testing.T) {
		res, err := TopK(MetricCosine, nil, query, 3)
		require.NoError(t, err)
		assert.Empty(t, res)
	})
}

func indices(res []Result) []uint32 {
	out := make([]uint32, len(res))
	for i, r := range res {
		out[i] = r.Index
	}
	return out
}
