package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info")
	log.Info("visible", "k", 1)
	log.V(1).Info("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "visible", rec["msg"])
	require.EqualValues(t, 1, rec["k"])
}

func TestNewWriterDebugShowsV1(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug")
	log.V(1).Info("stale")
	require.Contains(t, buf.String(), `"stale"`)
}

func TestNewCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "oelview.log")
	log, closeFn, err := New(path, "info")
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}
