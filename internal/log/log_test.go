package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestInitWriter(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	buf := &bytes.Buffer{}
	l := InitWriter(buf, "warn", true)
	l.Info("hidden")
	With("object_id", 7).Warn("lost")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"lost"`)
	assert.Contains(t, out, `"object_id":7`)
}
