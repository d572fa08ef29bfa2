package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	child := log.With(String("session_id", "s1"))
	child.Info("order created", String("store_id", "8022"), Int("lines", 0))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order created", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, "8022", entry["store_id"])
	assert.Equal(t, float64(0), entry["lines"])
}

func TestNew_ErrorAttachesErr(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Format: "json", Writer: &buf})
	require.NoError(t, err)

	log.Error("price failed", errors.New("boom"))
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)

	_, err = New(Config{Output: "stdout"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mcpizza.log")
	log, err := New(Config{Output: path})
	require.NoError(t, err)

	log.With(Bool("audit", true)).Info("hello")
	require.NoError(t, log.Close())
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "hello"))
}

func TestNewNoop(t *testing.T) {
	log := NewNoop()
	log.With(Any("k", 1)).Error("ignored", errors.New("x"), Err(errors.New("y")))
	assert.NoError(t, log.Close())
}
