package main

import "os"

// Defaults for the channel gate. The original Travis setup exported the
// active channel as TRAVIS_RUST_VERSION; that name is kept as a fallback so
// historical CI definitions keep working.
const (
	defaultChannelEnv  = "RUST_CHANNEL"
	travisChannelEnv   = "TRAVIS_RUST_VERSION"
	defaultNightlyName = "nightly"
)

// channelFromEnv reads the active toolchain channel from the environment.
// The value is read once per run and compared verbatim. A missing variable
// yields the empty string, which never matches the nightly channel; it is the
// normal state outside CI, not an error.
func channelFromEnv(envVar string) string {
	if v, ok := os.LookupEnv(envVar); ok {
		return v
	}
	if v, ok := os.LookupEnv(travisChannelEnv); ok {
		return v
	}
	return ""
}
