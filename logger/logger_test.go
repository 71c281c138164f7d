package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"spendlens/config"
)

func TestNew_Level(t *testing.T) {
	l := New(config.LogConfig{Level: "warn"})
	assert.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l = New(config.LogConfig{Level: "nonsense", Pretty: true})
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewWithWriter(buf)

	l.Info().Str("user_id", "42").Msg("test message")

	assert.Contains(t, buf.String(), "test message")
	assert.Contains(t, buf.String(), `"user_id":"42"`)
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf))

	l := FromContext(ctx)
	l.Info().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_Nop(t *testing.T) {
	l := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}
