package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls which commands the orchestrator runs and how the nightly
// pass is gated. Every field has a default; a test-orch.yaml at the repo root
// may override any of them.
type Config struct {
	// CrateDir is the directory holding Cargo.toml, relative to the repo root.
	CrateDir string `yaml:"crate-dir,omitempty"`
	// TestArgs are extra arguments appended to both `cargo test` invocations.
	TestArgs []string `yaml:"test-args,omitempty"`
	// NightlyFeature is the cargo feature enabled on the nightly pass.
	NightlyFeature string `yaml:"nightly-feature,omitempty"`
	// ChannelEnv names the environment variable holding the toolchain channel.
	ChannelEnv string `yaml:"channel-env,omitempty"`
	// NightlyChannel is the channel value that triggers the feature pass.
	NightlyChannel string `yaml:"nightly-channel,omitempty"`
	// Image and BaseImage configure the containerized mode.
	Image     string `yaml:"image,omitempty"`
	BaseImage string `yaml:"base-image,omitempty"`
}

func defaultConfig() *Config {
	return &Config{
		CrateDir:       ".",
		NightlyFeature: defaultNightlyName,
		ChannelEnv:     defaultChannelEnv,
		NightlyChannel: defaultNightlyName,
		Image:          "test-orch",
		BaseImage:      "rust:slim",
	}
}

// loadConfig reads path and overlays it on the defaults. A missing file is
// not an error: the defaults describe the standard crate layout.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var overlay Config
	if err := yaml.Unmarshal(content, &overlay); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if overlay.CrateDir != "" {
		cfg.CrateDir = overlay.CrateDir
	}
	if len(overlay.TestArgs) > 0 {
		cfg.TestArgs = overlay.TestArgs
	}
	if overlay.NightlyFeature != "" {
		cfg.NightlyFeature = overlay.NightlyFeature
	}
	if overlay.ChannelEnv != "" {
		cfg.ChannelEnv = overlay.ChannelEnv
	}
	if overlay.NightlyChannel != "" {
		cfg.NightlyChannel = overlay.NightlyChannel
	}
	if overlay.Image != "" {
		cfg.Image = overlay.Image
	}
	if overlay.BaseImage != "" {
		cfg.BaseImage = overlay.BaseImage
	}
	return cfg, nil
}
