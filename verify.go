package vecseg

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/vecseg/segment"
	"golang.org/x/sync/errgroup"
)

// Report describes the geometry of a segment file against its actual size.
type Report struct {
	Header   segment.Header
	Size     int64  // actual file size in bytes
	Expected uint64 // size implied by the header
	Trailing int64  // bytes past the last vector; readers ignore them
}

func (r Report) String() string {
	s := fmt.Sprintf("%s, size %d", r.Header, r.Size)
	if r.Trailing > 0 {
		s += fmt.Sprintf(", %d trailing bytes", r.Trailing)
	}
	return s
}

// Verify checks the segment at path using the default Store.
func Verify(path string) (Report, error) {
	return defaultStore.Verify(path)
}

// Verify decodes the header of path and compares the declared geometry with
// the file size. A file shorter than the header declares fails with
// ErrTruncated; the returned Report is still populated as far as known.
// Vector data is not read.
func (s *Store) Verify(path string) (r Report, err error) {
	defer func() {
		s.opts.logger.LogVerify(context.Background(), path, r, err)
	}()
	defer s.observeRead("verify", path, time.Now(), func() int { return 0 }, &err)

	f, h, size, err := s.openSegment(path)
	if err != nil {
		return Report{}, err
	}
	_ = f.Close()

	r = Report{Header: h, Size: size, Expected: h.FileSize()}
	if err := h.CheckSize(size); err != nil {
		return r, err
	}
	r.Trailing = size - int64(r.Expected) //nolint:gosec // Expected <= size
	return r, nil
}

// VerifyResult is the outcome of verifying one path.
type VerifyResult struct {
	Path   string
	Report Report
	Err    error
}

// VerifyAll verifies paths with at most concurrency files open at once and
// returns one result per path, in input order. Per-file failures are
// reported in the results; the returned error is non-nil only if ctx is
// done before every path was checked.
func (s *Store) VerifyAll(ctx context.Context, paths []string, concurrency int) ([]VerifyResult, error) {
	if concurrency <= 0 {
		concurrency = 4
	}
	results := make([]VerifyResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := s.Verify(p)
			results[i] = VerifyResult{Path: p, Report: r, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
