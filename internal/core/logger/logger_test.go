package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	l, sync := Build(Options{Level: "warn", JSON: true, Output: zapcore.AddSync(&buf)})
	l.Info("dropped")
	l.Warn("kept", zap.String("k", "v"))
	sync()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "v", entry["k"])
	assert.Contains(t, entry, "ts")
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, _ := Build(Options{Level: "loud", JSON: true, Output: zapcore.AddSync(&buf)})
	l.Debug("hidden")
	l.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, _ := Build(Options{Level: "debug", JSON: true, Output: zapcore.AddSync(&buf)})
	w := ToWriter(l, zapcore.ErrorLevel)
	n, err := w.Write([]byte("gin error\n"))
	require.NoError(t, err)
	assert.Equal(t, len("gin error\n"), n)
	assert.Contains(t, buf.String(), `"msg":"gin error"`)
	assert.Contains(t, buf.String(), `"level":"error"`)
}

func TestNewWithRotate_WritesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "app.log")
	l, sync := NewWithRotate("info", true, FileRotate{Filename: p, MaxSizeMB: 1})
	l.Info("to-file")
	sync()
	assert.FileExists(t, p)
}
