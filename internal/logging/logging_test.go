package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notekeeper/internal/model"
)

func TestJSONLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(model.LogConfig{Level: "WARN", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info().Msg("hidden")
	log.Warn().Str("op", "sync").Msg("shown")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "sync", entry["op"])
	assert.Equal(t, "shown", entry["message"])
}

func TestConsoleDefault(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(model.LogConfig{}, &buf)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Msg("started")
	assert.Contains(t, buf.String(), "started")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(model.LogConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = New(model.LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestOpenFile(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "logs", "notes.log"))
	require.NoError(t, err)
	assert.NoError(t, f.Close())
}
