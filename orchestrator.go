package main

import (
	"fmt"
)

// runTests executes the crate's default test suite and, only when the active
// toolchain channel is the nightly one, the suite again with the nightly
// feature enabled. The returned exit code is the code of the first command
// that failed, unchanged; the feature pass never starts after a failed
// default pass. A non-nil error means a command could not be run at all.
func runTests(r CommandRunner, cfg *Config, channel string) (int, error) {
	primary := append([]string{"test"}, cfg.TestArgs...)

	vlog(1, "==> Running Rust unit tests (cargo test)...")
	code, err := r.Run("cargo", primary...)
	if err != nil {
		return -1, err
	}
	if code != 0 {
		return code, nil
	}

	if channel != cfg.NightlyChannel {
		if channel == "" {
			vlog(2, "No toolchain channel set; skipping feature-gated tests")
		} else {
			vlog(2, "Toolchain channel is", channel+"; skipping feature-gated tests")
		}
		return 0, nil
	}

	secondary := append(primary, "--features", cfg.NightlyFeature)
	vlog(1, fmt.Sprintf("==> %s channel active, running feature-gated tests (cargo test --features %s)...", cfg.NightlyChannel, cfg.NightlyFeature))
	return r.Run("cargo", secondary...)
}
