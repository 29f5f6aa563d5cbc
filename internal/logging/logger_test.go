package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", slog.LevelInfo, "mollier-diagram")

	logger.Debug("hidden")
	logger.Info("refresh completed", "traces", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "refresh completed", entry["msg"])
	assert.Equal(t, "mollier-diagram", entry["app"])
	assert.Equal(t, float64(2), entry["traces"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "text", slog.LevelWarn, "mollier-diagram")

	logger.Info("hidden")
	logger.Warn("samples rejected", "sensor", "Office")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "samples rejected")
	assert.Contains(t, out, "Office")
}
