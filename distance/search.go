package distance

import (
	"cmp"
	"slices"
)

// Result is the score of one stored vector against a query.
type Result struct {
	Index uint32
	Score float32
}

// TopK scores every vector against query under m and returns the k closest,
// closest first. Ties keep index order. A vector whose length differs from
// the query fails with *LengthError.
func TopK(m Metric, vectors [][]float32, query []float32, k int) ([]Result, error) {
	fn, err := Provider(m)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(vectors))
	for i, v := range vectors {
		if len(v) != len(query) {
			return nil, &LengthError{A: len(v), B: len(query)}
		}
		results = append(results, Result{Index: uint32(i), Score: fn(v, query)}) //nolint:gosec // segment ordinals are uint32
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case m.Closer(a.Score, b.Score):
			return -1
		case m.Closer(b.Score, a.Score):
			return 1
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if k >= 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}
