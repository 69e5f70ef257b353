package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn", "json")
	log.Info("hidden")
	log.Warn("shown", "rows", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewTextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "", "text").Info("hello", "file", "a.csv")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "file=a.csv")
}

func TestFromContextAddsRunID(t *testing.T) {
	var buf bytes.Buffer
	orig := slog.Default()
	slog.SetDefault(New(&buf, "info", "text"))
	t.Cleanup(func() { slog.SetDefault(orig) })

	ctx := WithRun(context.Background(), "run-42")
	assert.Equal(t, "run-42", RunID(ctx))
	assert.Equal(t, "", RunID(context.Background()))

	WithFields(ctx, "file", "x.csv").Info("done")
	assert.Contains(t, buf.String(), "run_id=run-42")
	assert.Contains(t, buf.String(), "file=x.csv")

	buf.Reset()
	FromContext(context.Background()).Info("plain")
	assert.NotContains(t, buf.String(), "run_id")
}
