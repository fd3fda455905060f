package vecseg

import (
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vecseg/segment"
)

// ReadMany reads the vectors at indices using the default Store.
func ReadMany(path string, indices []uint32) ([][]float32, error) {
	return defaultStore.ReadMany(path, indices)
}

// ReadMany reads the vectors at the given indices, returned in the order of
// indices. Duplicates are allowed and yield independent copies.
//
// Every index is checked before any vector data is read; the first index
// outside [0, count) fails the call with *IndexOutOfBoundsError. Adjacent
// indices are coalesced, so each contiguous run costs one seek.
func (s *Store) ReadMany(path string, indices []uint32) (vectors [][]float32, err error) {
	defer s.observeRead("many", path, time.Now(), func() int { return len(vectors) }, &err)

	f, h, size, err := s.openSegment(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bm, runs, err := planRuns(h, indices)
	if err != nil {
		return nil, err
	}
	sorted := make([][]float32, 0, bm.GetCardinality())
	for _, r := range runs {
		vs, err := s.readRun(f, path, h, size, r.start, r.n)
		if err != nil {
			return nil, err
		}
		sorted = append(sorted, vs...)
	}
	return scatter(indices, bm, sorted), nil
}

// run is a contiguous block of vector indices.
type run struct {
	start uint32
	n     uint32
}

// planRuns validates indices against h and groups the distinct ones into
// ascending contiguous runs.
func planRuns(h segment.Header, indices []uint32) (*roaring.Bitmap, []run, error) {
	for _, i := range indices {
		if err := h.CheckIndex(i); err != nil {
			return nil, nil, err
		}
	}
	bm := roaring.New()
	bm.AddMany(indices)

	var runs []run
	it := bm.Iterator()
	for it.HasNext() {
		v := it.Next()
		if n := len(runs); n > 0 && uint64(runs[n-1].start)+uint64(runs[n-1].n) == uint64(v) {
			runs[n-1].n++
			continue
		}
		runs = append(runs, run{start: v, n: 1})
	}
	return bm, runs, nil
}

// scatter maps vectors read in ascending index order back to the caller's
// order. sorted[k] holds the vector with rank k+1 in bm.
func scatter(indices []uint32, bm *roaring.Bitmap, sorted [][]float32) [][]float32 {
	out := make([][]float32, len(indices))
	seen := roaring.New()
	for k, i := range indices {
		v := sorted[bm.Rank(i)-1]
		if !seen.CheckedAdd(i) {
			v = slices.Clone(v)
		}
		out[k] = v
	}
	return out
}
