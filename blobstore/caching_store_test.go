package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts backend reads of the blobs it opens.
type countingStore struct {
	BlobStore
	reads     atomic.Int64
	readBytes atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, store: s}, nil
}

type countingBlob struct {
	Blob
	store *countingStore
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	n, err := b.Blob.ReadAt(ctx, p, off)
	b.store.reads.Add(1)
	b.store.readBytes.Add(int64(n))
	return n, err
}

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func TestCachingStore_ReadAt(t *testing.T) {
	ctx := context.Background()
	data := testData(10_000)
	inner := &countingStore{BlobStore: NewMemoryStore()}
	require.NoError(t, inner.Put(ctx, "a.vec", data))

	store := NewCachingStore(inner, 1<<20, 1024)
	blob, err := store.Open(ctx, "a.vec")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 3000)
	n, err := blob.ReadAt(ctx, buf, 500)
	require.NoError(t, err)
	require.Equal(t, 3000, n)
	assert.Equal(t, data[500:3500], buf)
	// Blocks 0..3 are missing and contiguous: one backend read.
	assert.Equal(t, int64(1), inner.reads.Load())
	assert.Equal(t, int64(4096), inner.readBytes.Load())

	// Fully cached.
	n, err = blob.ReadAt(ctx, buf[:100], 1000)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, data[1000:1100], buf[:100])
	assert.Equal(t, int64(1), inner.reads.Load())

	hits, _ := store.Stats()
	assert.Positive(t, hits)
}

func TestCachingStore_Tail(t *testing.T) {
	ctx := context.Background()
	data := testData(2500)
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "a.vec", data))

	store := NewCachingStore(inner, 1<<20, 1024)
	blob, err := store.Open(ctx, "a.vec")
	require.NoError(t, err)

	buf := make([]byte, 1000)
	n, err := blob.ReadAt(ctx, buf, 2000)
	require.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 500, n)
	assert.Equal(t, data[2000:], buf[:n])

	n, err = blob.ReadAt(ctx, buf, 2500)
	require.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestCachingStore_TinyCapacity(t *testing.T) {
	ctx := context.Background()
	data := testData(5000)
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "a.vec", data))

	// Capacity below one block: every read goes through.
	store := NewCachingStore(inner, 10, 1024)
	blob, err := store.Open(ctx, "a.vec")
	require.NoError(t, err)

	buf := make([]byte, 4000)
	n, err := blob.ReadAt(ctx, buf, 100)
	require.NoError(t, err)
	assert.Equal(t, 4000, n)
	assert.Equal(t, data[100:4100], buf)
}

func TestCachingStore_InvalidateOnWrite(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	store := NewCachingStore(inner, 1<<20, 4)
	require.NoError(t, store.Put(ctx, "a.vec", []byte("old-data")))

	read := func() string {
		blob, err := store.Open(ctx, "a.vec")
		require.NoError(t, err)
		defer blob.Close()
		buf := make([]byte, blob.Size())
		_, err = blob.ReadAt(ctx, buf, 0)
		require.NoError(t, err)
		return string(buf)
	}
	assert.Equal(t, "old-data", read())

	w, err := store.Create(ctx, "a.vec")
	require.NoError(t, err)
	_, err = w.Write([]byte("new-data"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "new-data", read())

	require.NoError(t, store.Delete(ctx, "a.vec"))
	_, err = store.Open(ctx, "a.vec")
	assert.ErrorIs(t, err, ErrNotFound)
}
