package fs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	require.NoError(t, lfs.MkdirAll(dir, 0o755))

	fpath := filepath.Join(dir, "a.vec")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())

	buf := make([]byte, 3)
	_, err = f.ReadAt(buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "llo", string(buf))
	require.NoError(t, f.Close())

	renamed := filepath.Join(dir, "b.vec")
	require.NoError(t, lfs.Rename(fpath, renamed))
	_, err = lfs.Stat(fpath)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, SyncDir(lfs, dir))

	require.NoError(t, lfs.Remove(renamed))
	_, err = lfs.Stat(renamed)
	assert.True(t, os.IsNotExist(err))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(LocalFS{})
	diskFull := errors.New("disk full")
	ffs.AddRule("seg", Fault{FailAfterBytes: 5, FailReadAfter: -1, Err: diskFull})

	f, err := ffs.OpenFile(filepath.Join(tmp, "seg.vec"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, 0, n)
	assert.Equal(t, int64(5), ffs.Written())
}

func TestFaultyFS_ReadLimit(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "seg.vec")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	ffs := NewFaultyFS(nil)
	ffs.AddRule("seg", Fault{FailAfterBytes: -1, FailReadAfter: 4})

	f, err := ffs.OpenFile(path, os.O_RDONLY, 0)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 4)
	_, err = io.ReadFull(f, buf)
	require.NoError(t, err)

	_, err = f.Read(buf)
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 1, ffs.OpenCount(path))
}

func TestFaultyFS_OpenSyncCloseRename(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)

	ffs.AddRule("open", Fault{FailOnOpen: true})
	_, err := ffs.OpenFile(filepath.Join(tmp, "open.vec"), os.O_CREATE|os.O_RDWR, 0o644)
	assert.ErrorIs(t, err, ErrInjected)

	ffs.AddRule("sync", Fault{FailAfterBytes: -1, FailReadAfter: -1, FailOnSync: true, FailOnClose: true})
	f, err := ffs.OpenFile(filepath.Join(tmp, "sync.vec"), os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)
	assert.ErrorIs(t, f.Sync(), ErrInjected)
	assert.ErrorIs(t, f.Close(), ErrInjected)

	ffs.AddRule("target", Fault{FailAfterBytes: -1, FailReadAfter: -1, FailOnRename: true})
	assert.ErrorIs(t, ffs.Rename(filepath.Join(tmp, "sync.vec"), filepath.Join(tmp, "target.vec")), ErrInjected)
	assert.NoError(t, ffs.Rename(filepath.Join(tmp, "sync.vec"), filepath.Join(tmp, "other.vec")))
}
