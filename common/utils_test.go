package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 0, 3, 4))
	assert.Equal(t, "b", Coalesce("", "b"))
	assert.Equal(t, 0, Coalesce[int]())
}

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		n, d, want uint32
	}{
		{32, 8, 4},
		{33, 8, 5},
		{10, 8, 2},
		{1, 8, 1},
		{0, 8, 0},
		{7, 0, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CeilDiv(c.n, c.d), "CeilDiv(%d, %d)", c.n, c.d)
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLogLevel("Warn"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, zapcore.InfoLevel, ParseLogLevel("verbose"))
	assert.Equal(t, zapcore.InfoLevel, ParseLogLevel("warning"), "only zap's own names are accepted")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "warn", Name: "life"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
