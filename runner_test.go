package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("exec tests use sh")
	}
}

func TestExecRunnerReturnsZeroOnSuccess(t *testing.T) {
	requireUnix(t)
	r := &ExecRunner{Dir: t.TempDir()}
	code, err := r.Run("sh", "-c", "true")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestExecRunnerPropagatesExitCode(t *testing.T) {
	requireUnix(t)
	r := &ExecRunner{Dir: t.TempDir()}
	code, err := r.Run("sh", "-c", "exit 7")
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestExecRunnerRunsInDir(t *testing.T) {
	requireUnix(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), nil, 0o644))
	r := &ExecRunner{Dir: dir}
	code, err := r.Run("sh", "-c", "test -f marker")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestExecRunnerSurfacesSpawnFailure(t *testing.T) {
	r := &ExecRunner{Dir: t.TempDir()}
	_, err := r.Run("definitely-not-a-real-binary-4af1")
	require.Error(t, err)
}
