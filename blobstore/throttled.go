package blobstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds the limits of a ThrottledStore.
type ThrottleConfig struct {
	// BytesPerSec caps read throughput. If 0, unlimited.
	BytesPerSec int64

	// Burst is the largest number of bytes admitted at once.
	// Defaults to BytesPerSec.
	Burst int

	// MaxConcurrentReads caps in-flight ReadAt calls across all blobs.
	// If 0, unlimited.
	MaxConcurrentReads int64
}

// ThrottledStore wraps a BlobStore and rate-limits reads. Writes pass through.
type ThrottledStore struct {
	BlobStore
	limiter *rate.Limiter
	sem     *semaphore.Weighted
}

// NewThrottledStore wraps inner with the given limits.
func NewThrottledStore(inner BlobStore, cfg ThrottleConfig) *ThrottledStore {
	s := &ThrottledStore{BlobStore: inner}
	if cfg.BytesPerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(cfg.BytesPerSec)
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.BytesPerSec), burst)
	}
	if cfg.MaxConcurrentReads > 0 {
		s.sem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}
	return s
}

// Open opens a throttled blob.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, store: s}, nil
}

// acquire waits until n bytes may be read. Requests larger than the
// limiter's burst are admitted in burst-sized slices.
func (s *ThrottledStore) acquire(ctx context.Context, n int) error {
	if s.limiter == nil {
		return ctx.Err()
	}
	burst := s.limiter.Burst()
	for n > 0 {
		step := min(n, burst)
		if err := s.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

type throttledBlob struct {
	Blob
	store *ThrottledStore
}

func (b *throttledBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if sem := b.store.sem; sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return 0, err
		}
		defer sem.Release(1)
	}
	if err := b.store.acquire(ctx, len(p)); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(ctx, p, off)
}
