package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Logging tests cannot run in parallel: they share the package-global state.

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "info", want: LevelInfo},
		{in: "warn", want: LevelWarn},
		{in: "warning", want: LevelWarn},
		{in: "ERROR", want: LevelError},
		{in: "trace", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidLevel, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestGetBeforeInitIsSilent(t *testing.T) {
	logger := Get("uninitialized-component")
	require.NotNil(t, logger)
	// Must not panic or write anywhere.
	logger.Info("discarded")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fsum.log")
	require.NoError(t, Init(Config{Level: "debug", Path: path}))
	defer func() { require.NoError(t, Close()) }()

	Get("test").Info("hello from test", "key", "value")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), "test")
}

func TestLoggerHeldAcrossInitPicksUpSinks(t *testing.T) {
	// Package-level loggers are created before Init runs; they must start
	// writing once the configuration arrives.
	logger := Get("early")
	logger.Warn("dropped before init")

	path := filepath.Join(t.TempDir(), "fsum.log")
	require.NoError(t, Init(Config{Level: "info", Path: path}))
	defer func() { require.NoError(t, Close()) }()

	logger.Warn("visible after init")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped before init")
	assert.Contains(t, string(data), "visible after init")
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsum.log")
	require.NoError(t, Init(Config{
		Level:      "debug",
		Path:       path,
		Components: map[string]string{"quiet": "error"},
	}))
	defer func() { require.NoError(t, Close()) }()

	Get("quiet").Info("should be suppressed")
	Get("chatty").Info("should appear")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "should be suppressed")
	assert.Contains(t, string(data), "should appear")
}

func TestInitRejectsBadLevels(t *testing.T) {
	assert.Error(t, Init(Config{Level: "nope", Path: "-"}))
	assert.Error(t, Init(Config{Level: "info", ConsoleLevel: "nope", Path: "-"}))
	assert.Error(t, Init(Config{
		Level:      "info",
		Path:       "-",
		Components: map[string]string{"x": "nope"},
	}))
}

func TestWithAddsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fsum.log")
	require.NoError(t, Init(Config{Level: "info", Path: path}))
	defer func() { require.NoError(t, Close()) }()

	Get("ctx").With("run", "abc123").Info("contextual")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc123")
}
