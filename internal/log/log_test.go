package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetMinLevel(LevelInfo)
	})
	return &buf
}

func TestWriteFormat(t *testing.T) {
	buf := capture(t)

	Warn(CatSelection, "changed inside listener", "depth", 2, "dangling")

	line := buf.String()
	assert.Contains(t, line, "[WARN] [selection] changed inside listener")
	assert.Contains(t, line, "depth=2")
	assert.Contains(t, line, "dangling=<missing>")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("\n")))
}

func TestMinLevel(t *testing.T) {
	buf := capture(t)

	Debug(CatUI, "hidden")
	assert.Empty(t, buf.String(), "debug is below the default level")

	SetMinLevel(LevelDebug)
	Debug(CatUI, "shown")
	assert.Contains(t, buf.String(), "[DEBUG] [ui] shown")
}

func TestErrorErr(t *testing.T) {
	buf := capture(t)

	ErrorErr(CatSource, "load failed", errors.New("boom"), "repo", "a/b")
	ErrorErr(CatSource, "nil error", nil)

	out := buf.String()
	assert.Contains(t, out, "repo=a/b error=boom")
	assert.Contains(t, out, "error=<nil>")
}

func TestDisabledByDefault(t *testing.T) {
	SetOutput(nil)
	// must not panic without a writer
	Error(CatApp, "dropped")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prgrip.log")
	closeLog, err := Init(path, "prgrip")
	require.NoError(t, err)

	Info(CatApp, "starting")
	closeLog()
	Info(CatApp, "after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO] [app] starting")
	assert.NotContains(t, string(data), "after close")
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv("PRGRIP_DEBUG", "")
	assert.False(t, DebugEnabled())
	t.Setenv("PRGRIP_DEBUG", "false")
	assert.False(t, DebugEnabled())
	t.Setenv("PRGRIP_DEBUG", "1")
	assert.True(t, DebugEnabled())
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
