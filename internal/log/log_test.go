package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLog_NoopBeforeInit(t *testing.T) {
	Reset()
	// Must not panic without a logger installed.
	Info(CatCLI, "ignored", "k", "v")
}

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Info(CatStore, "persisted config", "dataset", "movies", "bytes", 42)

	line := buf.String()
	require.Contains(t, line, "[INFO] [store] persisted config")
	require.Contains(t, line, "dataset=movies")
	require.Contains(t, line, "bytes=42")
	require.True(t, strings.HasSuffix(line, "\n"))
}

func TestLog_OddFieldCount(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	Warn(CatConfig, "dangling", "orphan")

	require.Contains(t, buf.String(), "orphan=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	ErrorErr(CatRegistry, "add failed", errors.New("disk full"), "dataset", "des")
	ErrorErr(CatRegistry, "nil error", nil)

	out := buf.String()
	require.Contains(t, out, "[ERROR] [registry] add failed dataset=des error=disk full")
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndDisable(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	SetMinLevel(LevelWarn)
	Debug(CatCLI, "hidden")
	Info(CatCLI, "hidden too")
	Error(CatCLI, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetEnabled(false)
	Error(CatCLI, "suppressed")
	require.Empty(t, buf.String())
}

func TestLog_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)

	With("run_id", "abc")
	Debug(CatCLI, "command started", "command", "get")

	require.Contains(t, buf.String(), "command started run_id=abc command=get")
}

func TestInit_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")

	cleanup, err := Init(path)
	require.NoError(t, err)
	t.Cleanup(Reset)

	Info(CatTemplate, "loaded template", "name", "des")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [template] loaded template name=des")
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "DEBUG", LevelDebug.String())
	require.Equal(t, "ERROR", LevelError.String())
	require.Equal(t, "UNKNOWN", Level(42).String())
}
