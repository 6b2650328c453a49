package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, lvl Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Options{Level: lvl, Output: &buf, JSON: true})
	t.Cleanup(func() { Init(Options{Level: INFO}) })
	return &buf
}

func TestInfoCF_WritesComponentAndFields(t *testing.T) {
	buf := capture(t, INFO)

	InfoCF("session", "conversation started", map[string]interface{}{
		"conversation_id": "c1",
		"error":           errors.New("boom"),
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "conversation started", entry["msg"])
	assert.Equal(t, "session", entry["component"])
	assert.Equal(t, "c1", entry["conversation_id"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSetLevel_FiltersDebug(t *testing.T) {
	buf := capture(t, INFO)

	DebugCF("session", "hidden", nil)
	assert.Empty(t, buf.String())

	SetLevel(DEBUG)
	DebugCF("session", "shown", nil)
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetLevel(ERROR)
	WarnCF("cli", "dropped", nil)
	ErrorCF("cli", "kept", nil)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "kept")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": DEBUG, "INFO": INFO, "": INFO, "warning": WARN, "error": ERROR} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
