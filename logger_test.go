package vecseg

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, level slog.Level) (*Logger, func() []map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	return l, func() []map[string]any {
		var out []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			if line == "" {
				continue
			}
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(line), &m))
			out = append(out, m)
		}
		return out
	}
}

func TestLogger_Store(t *testing.T) {
	l, entries := captureLogs(t, slog.LevelDebug)
	store := New(WithLogger(l))

	path := writeSample(t)
	require.NoError(t, store.Write(path, sample))
	_, err := store.ReadAt(path, 1)
	require.NoError(t, err)
	_, err = store.ReadAt(path, 10)
	require.Error(t, err)

	logs := entries()
	require.Len(t, logs, 3)
	assert.Equal(t, "segment written", logs[0]["msg"])
	assert.EqualValues(t, 3, logs[0]["count"])
	assert.Equal(t, "segment read", logs[1]["msg"])
	assert.Equal(t, "at", logs[1]["op"])
	assert.Equal(t, "ERROR", logs[2]["level"])
	assert.Equal(t, "segment read failed", logs[2]["msg"])
}

func TestLogger_VerifyTrailing(t *testing.T) {
	l, entries := captureLogs(t, slog.LevelInfo)
	path := writeSample(t)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, 0), 0o600))

	_, err = New(WithLogger(l)).Verify(path)
	require.NoError(t, err)

	logs := entries()
	require.Len(t, logs, 1)
	assert.Equal(t, "WARN", logs[0]["level"])
	assert.EqualValues(t, 1, logs[0]["trailing"])
}

func TestNoopLogger(t *testing.T) {
	store := New(WithLogger(NoopLogger()))
	require.NoError(t, store.Write(writeSample(t), sample))
}
