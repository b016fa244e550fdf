package dockerutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunArgsDefaults(t *testing.T) {
	root := t.TempDir()
	args, name := BuildRunArgs(RunOptions{
		Tag:     "test-orch:latest",
		RootDir: root,
		Command: "cargo test",
	})

	assert.Equal(t, "test-orch-test-orch-latest", name)
	assert.Contains(t, args, "--rm")
	assert.Contains(t, args, fmt.Sprintf("%s:/workspace", root))
	assert.Contains(t, args, "--workdir")
	// the command runs through a login shell
	require.GreaterOrEqual(t, len(args), 3)
	assert.Equal(t, []string{"sh", "-lc", "cargo test"}, args[len(args)-3:])
}

func TestBuildRunArgsMountsTargetCacheAtCrateDir(t *testing.T) {
	root := t.TempDir()
	args, _ := BuildRunArgs(RunOptions{
		Tag:      "test-orch",
		RootDir:  root,
		CrateDir: "crates/pool",
	})
	cargoTarget := filepath.Join(root, ".cache", "test-orch", "cargo-target")
	assert.Contains(t, args, fmt.Sprintf("%s:/workspace/crates/pool/target", cargoTarget))
	assert.NotContains(t, args, fmt.Sprintf("%s:/workspace/target", cargoTarget))
}

func TestBuildRunArgsMountsTargetCacheAtRootForRootCrate(t *testing.T) {
	for _, crateDir := range []string{"", "."} {
		root := t.TempDir()
		args, _ := BuildRunArgs(RunOptions{
			Tag:      "test-orch",
			RootDir:  root,
			CrateDir: crateDir,
		})
		cargoTarget := filepath.Join(root, ".cache", "test-orch", "cargo-target")
		assert.Contains(t, args, fmt.Sprintf("%s:/workspace/target", cargoTarget), "crate-dir %q", crateDir)
	}
}

func TestBuildRunArgsKeepContainerOmitsRm(t *testing.T) {
	args, _ := BuildRunArgs(RunOptions{
		Tag:           "test-orch",
		RootDir:       t.TempDir(),
		KeepContainer: true,
	})
	assert.NotContains(t, args, "--rm")
}

func TestBuildRunArgsPassesEnvVars(t *testing.T) {
	args, _ := BuildRunArgs(RunOptions{
		Tag:     "test-orch",
		RootDir: t.TempDir(),
		EnvVars: []string{"RUST_CHANNEL=nightly"},
	})
	assert.Contains(t, args, "-e")
	assert.Contains(t, args, "RUST_CHANNEL=nightly")
}

func TestBuildRunArgsCreatesCargoCacheDirs(t *testing.T) {
	root := t.TempDir()
	_, _ = BuildRunArgs(RunOptions{Tag: "test-orch", RootDir: root})

	for _, d := range []string{
		filepath.Join(root, ".cache", "test-orch", "cargo", "registry"),
		filepath.Join(root, ".cache", "test-orch", "cargo", "git"),
		filepath.Join(root, ".cache", "test-orch", "cargo-target"),
	} {
		fi, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}
