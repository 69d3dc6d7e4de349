package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLoggerLevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerologLoggerWithWriter("evaluator", &buf, "warn")
	l.Infof("dropped")
	l.Warnf("kept %s", "line")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "evaluator", entry["component"])
	assert.Equal(t, "kept line", entry["message"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNewDefaultsToJSON(t *testing.T) {
	assert.NoError(t, os.Unsetenv("APP_ENV"))
	assert.NotNil(t, New("main"))
}
