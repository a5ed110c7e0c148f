package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNew_TextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := New(Config{Level: "warn"}, &buf)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	log.Info("hidden")
	log.Warn("shown", "pid", 42)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "pid=42")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Config{Format: "json"}, &buf)
	require.NoError(t, err)
	log.Info("hello", "service", "svc")
	assert.Contains(t, buf.String(), `"service":"svc"`)
}

func TestNew_UnknownFormat(t *testing.T) {
	_, _, err := New(Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_ColorHandler(t *testing.T) {
	var buf bytes.Buffer
	log, _, err := New(Config{Color: true, Level: "debug"}, &buf)
	require.NoError(t, err)
	log.With("component", "control").Debug("probe")
	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "probe")
	assert.Contains(t, out, "component=control")
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "svcctl.log")
	var buf bytes.Buffer
	log, closer, err := New(Config{File: FileConfig{Path: path}}, &buf)
	require.NoError(t, err)
	log.Info("to-file")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "to-file"))
	assert.Contains(t, buf.String(), "to-file")
}

func TestFileConfig_WriterDefaults(t *testing.T) {
	w, err := FileConfig{Path: filepath.Join(t.TempDir(), "x.log")}.Writer()
	require.NoError(t, err)
	l, ok := w.(*lj.Logger)
	require.True(t, ok)
	assert.Equal(t, DefaultMaxSizeMB, l.MaxSize)
	assert.Equal(t, DefaultMaxBackups, l.MaxBackups)
	assert.Equal(t, DefaultMaxAgeDays, l.MaxAge)

	_, err = FileConfig{}.Writer()
	assert.Error(t, err)
}
