package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "test-orch.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test-orch.yaml")
	content := `
crate-dir: crates/pool
test-args: ["--locked", "-q"]
nightly-feature: unstable
channel-env: CI_RUST_CHANNEL
base-image: rust:1.79-slim
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "crates/pool", cfg.CrateDir)
	assert.Equal(t, []string{"--locked", "-q"}, cfg.TestArgs)
	assert.Equal(t, "unstable", cfg.NightlyFeature)
	assert.Equal(t, "CI_RUST_CHANNEL", cfg.ChannelEnv)
	assert.Equal(t, "rust:1.79-slim", cfg.BaseImage)
	// untouched fields keep their defaults
	assert.Equal(t, "nightly", cfg.NightlyChannel)
	assert.Equal(t, "test-orch", cfg.Image)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test-orch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crate-dir: [unterminated"), 0o644))

	_, err := loadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
