package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/fatih/color"

	"test-orch/dockerutil"
)

// CommandRunner abstracts process execution so the orchestration sequence can
// be exercised in tests without spawning real commands. Run returns the exit
// code of the command; a non-nil error means the command could not be started
// or its exit status could not be determined.
type CommandRunner interface {
	Run(name string, args ...string) (int, error)
}

// ExecRunner runs commands as local child processes in Dir, streaming their
// stdout/stderr lines to the orchestrator's own streams.
type ExecRunner struct {
	Dir string
}

func (r *ExecRunner) Run(name string, args ...string) (int, error) {
	vlog(2, "RUN>", name, strings.Join(args, " "))
	cmd := exec.Command(name, args...)
	cmd.Dir = r.Dir
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, err
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start %s: %w", name, err)
	}
	doneCh := make(chan struct{}, 2)
	go func() {
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			fmt.Fprintln(os.Stdout, scanner.Text())
		}
		doneCh <- struct{}{}
	}()
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			fmt.Fprintln(os.Stderr, scanner.Text())
		}
		doneCh <- struct{}{}
	}()
	// Wait for pipes to drain before collecting the exit status
	<-doneCh
	<-doneCh
	return exitCode(cmd.Wait())
}

// DockerRunner executes each command inside a fresh container of Image, with
// the repository mounted at /workspace and cargo caches persisted under
// RootDir. The container's exit code is forwarded unchanged by `docker run`.
type DockerRunner struct {
	Image         string
	RootDir       string
	CrateDir      string // crate dir relative to the repo root ("." for root)
	EnvVars       []string
	KeepContainer bool
	Timeout       time.Duration
	Selected      dockerutil.Verb
	Col           *color.Color
}

func (r *DockerRunner) Run(name string, args ...string) (int, error) {
	command := name
	if len(args) > 0 {
		command = name + " " + strings.Join(args, " ")
	}
	if r.CrateDir != "" && r.CrateDir != "." {
		command = fmt.Sprintf("cd %s && %s", path.Join("/workspace", r.CrateDir), command)
	}
	opts := dockerutil.RunOptions{
		Tag:           r.Image,
		RootDir:       r.RootDir,
		CrateDir:      r.CrateDir,
		Command:       command,
		EnvVars:       r.EnvVars,
		KeepContainer: r.KeepContainer,
		Selected:      r.Selected,
		Col:           r.Col,
	}
	ctx := context.Background()
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	return dockerutil.RunTestContainer(ctx, opts)
}

// exitCode translates the error from (*exec.Cmd).Wait into an exit code.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
