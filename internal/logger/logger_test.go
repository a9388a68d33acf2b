package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New("warn", "console")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	_, err = New("loud", "console")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithOutput(&buf, "info", "json")
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("file", "clients.jsonl").Msg("loaded")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"file":"clients.jsonl"`)
	assert.Contains(t, out, `"message":"loaded"`)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	lvl, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), NewWithWriter(&buf))

	log := FromContext(ctx)
	log.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
