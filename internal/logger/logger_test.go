package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "warn", Format: "json"}, &buf)

	Info().Msg("dropped")
	Warn().Str("stage", "extract").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "extract", entry["stage"])
	assert.Equal(t, "kept", entry["message"])
}

func TestWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "debug"}, &buf)

	ctx, l := WithRequestID(context.Background(), "req-123")
	l.Info().Msg("direct")
	Ctx(ctx).Info().Msg("from context")

	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry))
		assert.Equal(t, "req-123", entry["request_id"])
	}
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(Config{Level: "info"}, &buf)

	Ctx(context.Background()).Info().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}
