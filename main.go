package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/docker/docker/client"
	"github.com/fatih/color"

	"test-orch/dockerutil"
)

// CI test entry point for the crate. Runs the default suite and, when the
// active toolchain channel is nightly, the suite again with the nightly
// feature enabled. With --docker the same sequence runs inside a container.
//
// Usage examples:
//   go run .
//   RUST_CHANNEL=nightly go run .
//   go run . --docker
//   go run . --docker --build
//   go run . --shell

func main() {
	var (
		useDocker   = flag.Bool("docker", false, "Run the test sequence inside a Docker container")
		buildImg    = flag.Bool("build", false, "Build the Docker test image before running")
		shellMode   = flag.Bool("shell", false, "Open an interactive shell inside the Docker test image")
		noCache     = flag.Bool("no-cache", false, "Build without using cache")
		pullBase    = flag.Bool("pull", false, "Always attempt to pull a newer base image during build")
		keepCtr     = flag.Bool("keep-container", false, "Do not remove container after run (omit --rm)")
		timeout     = flag.Duration("timeout", 30*time.Minute, "Timeout for docker run")
		rootDirFlag = flag.String("root-dir", "", "Repository root (defaults to git root or the nearest Cargo.toml)")
		cfgPath     = flag.String("config", "", "Path to test-orch.yaml (defaults to <root>/test-orch.yaml)")
		verbose     = flag.Bool("v", false, "Verbose output")
		veryVerbose = flag.Bool("vv", false, "Very verbose (trace) output")
		quiet       = flag.Bool("q", false, "Quiet output (only critical errors and final summary)")
	)
	flag.Parse()
	log.SetFlags(0)

	// Configure verbosity levels
	var verbosityLevel int
	if *quiet {
		verbosityLevel = 0
	} else if *veryVerbose {
		verbosityLevel = 3
	} else if *verbose {
		verbosityLevel = 2
	} else {
		verbosityLevel = 1
	}
	setQuiet(*quiet)
	setVerbosity(verbosityLevel)
	var selected dockerutil.Verb
	switch verbosityLevel {
	case 0:
		selected = dockerutil.V0
	case 1:
		selected = dockerutil.V1
	case 2:
		selected = dockerutil.V2
	default:
		selected = dockerutil.V3
	}

	rootDir := *rootDirFlag
	if rootDir == "" {
		if root, err := detectRepoRoot(); err == nil {
			rootDir = root
		} else if wd, err2 := os.Getwd(); err2 == nil {
			rootDir = wd
		} else {
			log.Fatalf("❌ could not determine repository root: %v", err)
		}
	}

	configFile := *cfgPath
	if configFile == "" {
		configFile = filepath.Join(rootDir, "test-orch.yaml")
	}
	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	crateDir := filepath.Join(rootDir, cfg.CrateDir)

	// The channel is read once here and treated as a constant for the rest of
	// the run. An unset variable means "not the nightly channel", never an error.
	channel := channelFromEnv(cfg.ChannelEnv)

	if *shellMode {
		if !checkDocker() {
			os.Exit(1)
		}
		if err := ensureImage(cfg, rootDir, *buildImg, *noCache, *pullBase, selected); err != nil {
			log.Fatalf("❌ %v", err)
		}
		if err := dockerutil.RunInteractiveShell(cfg.Image, rootDir, selected); err != nil {
			log.Fatalf("❌ interactive shell failed: %v", err)
		}
		return
	}

	var runner CommandRunner
	if *useDocker {
		if !checkDocker() {
			os.Exit(1)
		}
		if err := ensureImage(cfg, rootDir, *buildImg, *noCache, *pullBase, selected); err != nil {
			log.Fatalf("❌ %v", err)
		}
		var envVars []string
		if channel != "" {
			envVars = append(envVars, cfg.ChannelEnv+"="+channel)
		}
		runner = &DockerRunner{
			Image:         cfg.Image,
			RootDir:       rootDir,
			CrateDir:      cfg.CrateDir,
			EnvVars:       envVars,
			KeepContainer: *keepCtr,
			Timeout:       *timeout,
			Selected:      selected,
			Col:           color.New(color.FgCyan),
		}
	} else {
		if !checkCargo(channel) {
			os.Exit(1)
		}
		runner = &ExecRunner{Dir: crateDir}
	}

	code, err := runTests(runner, cfg, channel)
	if err != nil {
		log.Fatalf("❌ test run failed: %v", err)
	}
	if code == 0 {
		if !quietMode {
			log.Println("==> All tests passed.")
		}
		os.Exit(0)
	}
	if !quietMode {
		log.Printf("==> Tests failed (exit %d).", code)
	}
	os.Exit(code)
}

// ensureImage builds the Docker test image when asked to, or when the tag is
// missing locally.
func ensureImage(cfg *Config, rootDir string, build, noCache, pull bool, selected dockerutil.Verb) error {
	col := color.New(color.FgCyan)
	if !build {
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return err
		}
		exists, err := dockerutil.ImageExists(context.Background(), cli, cfg.Image)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		vlog(1, "Docker image not found; building...")
	}
	if err := dockerutil.BuildTestImage(cfg.Image, rootDir, cfg.BaseImage, noCache, pull, selected, col); err != nil {
		return err
	}
	return nil
}
