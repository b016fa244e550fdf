package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Verbosity controls
// 0 = quiet (only final summary and critical errors)
// 1 = normal (default)
// 2 = verbose (-v)
// 3 = trace (-vv)
var (
	quietMode      bool
	verbosityLevel = 1
)

func setQuiet(q bool) { quietMode = q }

func setVerbosity(lvl int) {
	if lvl < 0 {
		lvl = 0
	}
	if lvl > 3 {
		lvl = 3
	}
	verbosityLevel = lvl
}

func have(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func out(name string, args ...string) string {
	cmd := exec.Command(name, args...)
	var b bytes.Buffer
	cmd.Stdout = &b
	cmd.Stderr = &b
	_ = cmd.Run()
	return strings.TrimSpace(b.String())
}

func runSilent(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run()
}

func warn(v ...interface{}) {
	if quietMode {
		return
	}
	log.Println("WARN:", fmt.Sprint(v...))
}

func section(title string) {
	if quietMode || verbosityLevel < 2 {
		return
	}
	log.Println()
	log.Println("==>", title)
}

// vlog prints when the current verbosity is >= level (0..3)
func vlog(level int, v ...interface{}) {
	if verbosityLevel >= level {
		log.Println(v...)
	}
}

// detectRepoRoot finds the repository root, or returns an error.
func detectRepoRoot() (string, error) {
	// Prefer `git rev-parse --show-toplevel`
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err == nil && len(out) > 0 {
		return strings.TrimSpace(string(out)), nil
	}
	// Fallback: search upwards for a Cargo.toml or .git directory as heuristic
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := wd
	for i := 0; i < 6; i++ { // don't traverse indefinitely
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "Cargo.toml")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("could not detect repo root")
}
