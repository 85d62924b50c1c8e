package logger

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/LavaJover/shvark-rms-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := parseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseLevel("verbose")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rms.log")
	l, err := New(config.LogConfig{LogLevel: "warn", LogFormat: "json", LogOutput: path})
	require.NoError(t, err)
	assert.False(t, l.Enabled(t.Context(), slog.LevelInfo))
	assert.True(t, l.Enabled(t.Context(), slog.LevelError))

	_, err = New(config.LogConfig{LogFormat: "xml"})
	assert.Error(t, err)
}
