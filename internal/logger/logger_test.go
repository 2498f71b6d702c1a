package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, `"key":"value"`)
	assert.Contains(t, out, `"level":"INFO"`)
}

func TestJSONLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")
	log.Debug("also should not appear")
	assert.Zero(t, buf.Len())

	log.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelDebug).With("component", "bridge").WithGroup("call")
	log.Debug("change backend", "kind", "float", "shape", "[2, 2]")

	out := buf.String()
	assert.Contains(t, out, "change backend")
	assert.Contains(t, out, "component=bridge")
	assert.Contains(t, out, "call.kind=float")
	assert.Contains(t, out, `call.shape="[2, 2]"`)
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(slog.LevelDebug))
	assert.False(t, log.Enabled(slog.LevelError))
	log.Error("dropped")
}

func TestForFormat(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range []string{"", "pretty", "json", "text", "JSON"} {
		log, err := ForFormat(&buf, format, slog.LevelInfo)
		require.NoError(t, err, format)
		assert.True(t, log.Enabled(slog.LevelInfo))
		assert.False(t, log.Enabled(slog.LevelDebug))
	}

	_, err := ForFormat(&buf, "xml", slog.LevelInfo)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestContext(t *testing.T) {
	log := Discard()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
