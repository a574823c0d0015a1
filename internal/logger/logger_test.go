package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_jsonOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := initWith(&buf, "production", "info")

	l.Info("started", "port", 8080)
	l.Debug("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "started", line["msg"])
	assert.Equal(t, float64(8080), line["port"])
}

func TestInit_textInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := initWith(&buf, "development", "debug")
	l.Debug("visible")

	assert.Contains(t, buf.String(), "msg=visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
