package main

import (
	"log"
)

// checkCargo validates that the cargo binary is available before any test
// command is attempted, so a missing toolchain fails with a clear message
// instead of a spawn error mid-run.
func checkCargo(channel string) bool {
	section("Toolchain checks")
	if !have("cargo") {
		warn("cargo not found on PATH.")
		log.Println("Install Rust via rustup: https://rustup.rs")
		return false
	}
	if verbosityLevel >= 2 {
		vlog(2, "cargo:", out("cargo", "--version"))
	}
	// rustup is optional; the CI image may ship a single pinned toolchain.
	if channel != "" && have("rustup") {
		if err := runSilent("rustup", "run", channel, "cargo", "--version"); err != nil {
			warn("toolchain channel '", channel, "' is not installed; cargo will use the default toolchain")
		}
	}
	return true
}

// checkDocker validates Docker presence and daemon responsiveness for the
// containerized mode.
func checkDocker() bool {
	section("Docker checks")
	if !have("docker") {
		warn("docker not found on PATH.")
		log.Println("Install Docker and retry, or run without --docker.")
		return false
	}
	if err := runSilent("docker", "version"); err != nil {
		warn("docker is installed but not responding. Make sure the Docker daemon is running and your user is in the docker group.")
		log.Println("Quick fix:")
		log.Println("  sudo systemctl enable --now docker")
		log.Println("  sudo usermod -aG docker \"$USER\"  # then re-login or run: newgrp docker")
		return false
	}
	return true
}
