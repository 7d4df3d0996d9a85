package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriter_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Info("relay delivered", zap.String("event_type", "invoice_paid"))
	_ = log.Sync()

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "relay delivered", entry["msg"])
	assert.Equal(t, "invoice_paid", entry["event_type"])
	assert.Equal(t, "info", entry["level"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewWithWriter_DevelopmentFileHasNoColor(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug("debug visible in development")
	_ = log.Sync()

	assert.NotContains(t, buf.String(), "\x1b[")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "debug visible in development", entry["msg"])
	assert.Contains(t, entry, "caller")
	assert.Contains(t, entry, "timestamp")
	assert.NotContains(t, entry, "L")
	assert.NotContains(t, entry, "M")
}

func TestNew_WithoutFile(t *testing.T) {
	log, err := New("test", "")
	require.NoError(t, err)
	assert.NotNil(t, log)
}
