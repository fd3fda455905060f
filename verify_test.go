package vecseg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	path := writeSample(t)

	r, err := Verify(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), r.Header.Count)
	assert.Equal(t, int64(52), r.Size)
	assert.Equal(t, uint64(52), r.Expected)
	assert.Zero(t, r.Trailing)
	assert.Contains(t, r.String(), "3 vectors")
}

func TestVerify_Trailing(t *testing.T) {
	path := writeSample(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, 1, 2, 3), 0o600))

	r, err := Verify(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Trailing)
	assert.Contains(t, r.String(), "3 trailing bytes")
}

func TestVerify_Truncated(t *testing.T) {
	path := writeSample(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:30], 0o600))

	r, err := Verify(path)
	require.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, int64(30), r.Size)
	assert.Equal(t, uint64(52), r.Expected)
}

func TestVerifyAll(t *testing.T) {
	dir := t.TempDir()
	good := writeSample(t)
	bad := filepath.Join(dir, "bad.vec")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0o600))
	missing := filepath.Join(dir, "missing.vec")

	store := New()
	results, err := store.VerifyAll(context.Background(), []string{good, bad, missing, good}, 2)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, good, results[0].Path)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, ErrInvalidFormat)
	var ioErr *IOError
	assert.ErrorAs(t, results[2].Err, &ioErr)
	assert.NoError(t, results[3].Err)
}

func TestVerifyAll_Canceled(t *testing.T) {
	path := writeSample(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().VerifyAll(ctx, []string{path, path}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
