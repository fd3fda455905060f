package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/vecseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.vec")
	out, err := run(t, "[1,2,3]\n[4,5,6]\n\n[7,8,9]\n", "write", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 vectors")
	return path
}

func TestWriteAndRead(t *testing.T) {
	path := writeSample(t)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(52), fi.Size())

	out, err := run(t, "", "get", path, "1")
	require.NoError(t, err)
	assert.Equal(t, "[4, 5, 6]\n", out)

	out, err = run(t, "", "range", path, "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "1\t[4, 5, 6]\n2\t[7, 8, 9]\n", out)

	out, err = run(t, "", "many", path, "2", "0", "2")
	require.NoError(t, err)
	assert.Equal(t, "2\t[7, 8, 9]\n0\t[1, 2, 3]\n2\t[7, 8, 9]\n", out)

	out, err = run(t, "", "cat", path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestReadErrors(t *testing.T) {
	path := writeSample(t)

	_, err := run(t, "", "get", path, "3")
	require.ErrorIs(t, err, vecseg.ErrIndexOutOfBounds)

	_, err = run(t, "", "range", path, "2", "2")
	require.ErrorIs(t, err, vecseg.ErrRangeOutOfBounds)

	_, err = run(t, "", "get", path, "-1")
	assert.Error(t, err)

	_, err = run(t, "", "get", filepath.Join(t.TempDir(), "missing.vec"), "0")
	var ioErr *vecseg.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestWriteDimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.vec")
	_, err := run(t, "[1,2]\n[1,2,3]\n", "write", path)
	require.ErrorIs(t, err, vecseg.ErrDimensionMismatch)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteWithMetadata(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(input, []byte(
		`{"vector":[1,0],"metadata":{"title":"a"}}`+"\n"+
			`{"vector":[0,1]}`+"\n"), 0o600))
	path := filepath.Join(dir, "meta.vec")

	_, err := run(t, "", "write", path, "-i", input)
	require.NoError(t, err)

	out, err := run(t, "", "cat", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, "0\t[1, 0]\t{\"title\":\"a\"}\n1\t[0, 1]\tnull\n", out)
}

func TestInfo(t *testing.T) {
	path := writeSample(t)

	out, err := run(t, "", "info", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Count:       3")
	assert.Contains(t, out, "Dimension:   3")
	assert.Contains(t, out, "52 bytes (expected 52)")

	out, err = run(t, "", "info", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"count":3`)
	assert.Contains(t, out, `"trailing":0`)
}

func TestDump(t *testing.T) {
	path := writeSample(t)

	out, err := run(t, "", "dump", path, "--max-bytes", "32")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "00000000  56 45 43 54  01 00 00 00  03 00 00 00  03 00 00 00"))
	assert.True(t, strings.HasSuffix(lines[1], "VECT............"))
	assert.True(t, strings.HasPrefix(lines[2], "00000010  00 00 80 3F"))
}

func TestVerify(t *testing.T) {
	good := writeSample(t)
	bad := filepath.Join(t.TempDir(), "bad.vec")
	data, err := os.ReadFile(good)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bad, data[:40], 0o600))

	out, err := run(t, "", "verify", good)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK\t"))

	out, err = run(t, "", "verify", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "FAIL\t"+bad)
	assert.Contains(t, err.Error(), "1 of 2")
}

func TestNearest(t *testing.T) {
	path := writeSample(t)

	out, err := run(t, "", "nearest", path, "--query", "7,8,9", "--metric", "euclidean", "-k", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "1\t2\t0"))
	assert.True(t, strings.HasPrefix(lines[1], "2\t1\t"))

	_, err = run(t, "", "nearest", path, "--query", "1,2")
	assert.Error(t, err)

	_, err = run(t, "", "nearest", path, "--query", "1,2,3", "--metric", "manhattan")
	assert.Error(t, err)
}

func TestPushPull(t *testing.T) {
	path := writeSample(t)
	root := t.TempDir()
	backend := []string{"--backend", "local", "--root", root}

	out, err := run(t, "", append(backend, "push", path, "remote/sample.vec")...)
	require.NoError(t, err)
	assert.Contains(t, out, "pushed 3 vectors")

	out, err = run(t, "", append(backend, "remote-ls", "remote/")...)
	require.NoError(t, err)
	assert.Equal(t, "remote/sample.vec\n", out)

	out, err = run(t, "", append(backend, "remote-get", "remote/sample.vec", "2")...)
	require.NoError(t, err)
	assert.Equal(t, "[7, 8, 9]\n", out)

	out, err = run(t, "", append(backend, "remote-get", "remote/sample.vec", "2", "0")...)
	require.NoError(t, err)
	assert.Equal(t, "2\t[7, 8, 9]\n0\t[1, 2, 3]\n", out)

	pulled := filepath.Join(t.TempDir(), "pulled.vec")
	_, err = run(t, "", append(backend, "pull", "remote/sample.vec", pulled)...)
	require.NoError(t, err)

	want, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := os.ReadFile(pulled)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = run(t, "", append(backend, "remote-get", "remote/missing.vec", "0")...)
	assert.Error(t, err)
}

func TestFormatVector(t *testing.T) {
	v, err := parseVector("1, -0.5,, 3e2")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -0.5, 300}, v)
	assert.Equal(t, "[1, -0.5, 300]", formatVector(v))
	assert.Equal(t, "[]", formatVector(nil))
}
