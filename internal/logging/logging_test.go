package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)

	logger.With("module", "x/table").Info("table initialized", "pot", 0)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "table initialized", entry["message"])
	require.Equal(t, "x/table", entry["module"])
}

func TestNew_Plain(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "debug", "plain")
	require.NoError(t, err)

	logger.Debug("visible", "k", "v")
	require.Contains(t, buf.String(), "visible")
	require.Contains(t, buf.String(), "k=v")
}

func TestNew_Rejects(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", "plain")
	require.Error(t, err)
	_, err = New(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}
