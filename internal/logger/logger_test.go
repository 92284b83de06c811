package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("WIB", 7*60*60)

	log := NewWithWriter(&buf, loc, zapcore.InfoLevel)
	log.Debug("hidden")
	log.Info("hello", zap.String("component", "test"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "test", entry["component"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	assert.Contains(t, ts, "+07:00")
}

func TestNew(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")

	log, err := New("production", "debug", time.UTC)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}
