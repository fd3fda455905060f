package vecseg

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dumpTitle = "Offset    00 01 02 03  04 05 06 07  08 09 0A 0B  0C 0D 0E 0F   ASCII\n"

func TestDump_Header(t *testing.T) {
	path := writeSample(t)

	var buf bytes.Buffer
	require.NoError(t, New().Dump(&buf, path, 16))

	want := dumpTitle +
		"00000000  56 45 43 54  01 00 00 00  03 00 00 00  03 00 00 00   VECT............\n"
	assert.Equal(t, want, buf.String())
}

func TestDump_Limits(t *testing.T) {
	path := writeSample(t)

	var buf bytes.Buffer
	require.NoError(t, New().Dump(&buf, path, 1024))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	// title + ceil(52/16) rows
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[4], "00000030  "))

	buf.Reset()
	require.NoError(t, New().Dump(&buf, path, 0))
	assert.Equal(t, dumpTitle, buf.String())
}

func TestDump_Missing(t *testing.T) {
	var buf bytes.Buffer
	err := New().Dump(&buf, filepath.Join(t.TempDir(), "nope.vec"), 16)
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestHexDump_PartialLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HexDump(&buf, []byte("AB\x00")))

	line := strings.TrimPrefix(buf.String(), dumpTitle)
	assert.True(t, strings.HasPrefix(line, "00000000  41 42 00 "))
	assert.True(t, strings.HasSuffix(line, "   AB.\n"))
	// Short rows are padded so the ASCII column lines up.
	assert.Len(t, line, len(dumpTitle)-len("ASCII\n")+len("AB.\n"))
}

func TestDump_LimitLargerThanFile(t *testing.T) {
	path := writeSample(t)
	store := New()

	var want bytes.Buffer
	require.NoError(t, store.Dump(&want, path, 52))

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)

	var buf bytes.Buffer
	require.NoError(t, store.Dump(&buf, path, 1<<30))

	runtime.ReadMemStats(&after)
	assert.Equal(t, want.String(), buf.String())
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}
