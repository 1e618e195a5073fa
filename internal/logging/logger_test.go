package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("debug"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("verbose"))
}

func TestNewJSON_WritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	log := newJSON(&buf, zapcore.InfoLevel)

	log.Debug("hidden")
	log.Info("user registered", zap.Int64("user_id", 7))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "user registered", entry["msg"])
	assert.Equal(t, float64(7), entry["user_id"])
	assert.Contains(t, entry, "ts")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew(t *testing.T) {
	dev, err := New("debug", true)
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(zapcore.DebugLevel))

	prod, err := New("warn", false)
	require.NoError(t, err)
	assert.False(t, prod.Core().Enabled(zapcore.InfoLevel))
}
