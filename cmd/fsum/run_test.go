package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv points HOME at a temp directory and disables the log file so
// setupRun never touches the real user environment.
func testEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("FSUM_LOGGING_PATH", "-")
	initConfig()
}

func TestExitStatus(t *testing.T) {
	defer func() { exitCode = 0 }()

	// A fatal error maps to status 2, distinct from the "changes found /
	// verification failed" status 1.
	assert.Equal(t, 2, exitStatus(errors.New("boom")))

	exitCode = 0
	assert.Equal(t, 0, exitStatus(nil))

	exitCode = 1
	assert.Equal(t, 1, exitStatus(nil))
}

func TestSetupRun_PathDoesNotExist(t *testing.T) {
	testEnv(t)

	_, err := setupRun([]string{filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path does not exist")
}

func TestSetupRun_PathIsAFile(t *testing.T) {
	testEnv(t)

	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := setupRun([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestSetupRun_DefaultManifestPath(t *testing.T) {
	testEnv(t)

	root := t.TempDir()
	env, err := setupRun([]string{root})
	require.NoError(t, err)
	defer finishRun(env)

	assert.Equal(t, filepath.Join(root, "FileChecksums.txt"), env.names.Final)
	assert.Equal(t, root, env.root)
	assert.NotEmpty(t, env.runID)
	assert.False(t, env.stop.Requested())
}

func TestSetupRun_AbsoluteManifestOverride(t *testing.T) {
	testEnv(t)

	override := filepath.Join(t.TempDir(), "Sums.txt")
	viper.Set("checksum_file", override)
	defer viper.Set("checksum_file", "")

	env, err := setupRun([]string{t.TempDir()})
	require.NoError(t, err)
	defer finishRun(env)

	assert.Equal(t, override, env.names.Final)
}

func TestSetupRun_RelativeManifestResolvesAgainstRoot(t *testing.T) {
	testEnv(t)

	viper.Set("checksum_file", "Sums.txt")
	defer viper.Set("checksum_file", "")

	root := t.TempDir()
	env, err := setupRun([]string{root})
	require.NoError(t, err)
	defer finishRun(env)

	assert.Equal(t, filepath.Join(root, "Sums.txt"), env.names.Final)
}
