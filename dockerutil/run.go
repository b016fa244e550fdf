package dockerutil

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// RunOptions encapsulates configuration to construct `docker run` args.
type RunOptions struct {
	Tag     string
	RootDir string
	// CrateDir is the crate's directory relative to the repo root ("." for a
	// root-level Cargo.toml); the target cache mounts under it.
	CrateDir      string
	Command       string
	EnvVars       []string
	KeepContainer bool
	Selected      Verb
	Col           *color.Color
}

// BuildRunArgs assembles the argument list for `docker run`, ensures the
// cargo cache directories exist, and returns the computed container name.
// The repository is mounted at /workspace; the cargo registry, git and target
// caches persist under <RootDir>/.cache/test-orch so repeated runs skip
// re-downloading and re-building dependencies.
func BuildRunArgs(opts RunOptions) (args []string, containerName string) {
	tagNorm := strings.ReplaceAll(opts.Tag, ":", "-")
	containerName = fmt.Sprintf("test-orch-%s", tagNorm)

	args = []string{"run"}
	if !opts.KeepContainer {
		args = append(args, "--rm")
	}
	for _, env := range opts.EnvVars {
		args = append(args, "-e", env)
	}
	args = append(args, "-v", fmt.Sprintf("%s:/workspace", opts.RootDir))

	cacheRoot := filepath.Join(opts.RootDir, ".cache", "test-orch")
	cargoReg := filepath.Join(cacheRoot, "cargo", "registry")
	cargoGit := filepath.Join(cacheRoot, "cargo", "git")
	cargoTarget := filepath.Join(cacheRoot, "cargo-target")
	for _, d := range []string{cargoReg, cargoGit, cargoTarget} {
		_ = os.MkdirAll(d, 0o755)
	}
	// cargo writes build artifacts next to the crate's Cargo.toml, so the
	// target cache must follow the crate dir inside the workspace.
	targetMount := path.Join("/workspace", opts.CrateDir, "target")
	args = append(args, "-v", fmt.Sprintf("%s:%s", cargoReg, "/usr/local/cargo/registry"))
	args = append(args, "-v", fmt.Sprintf("%s:%s", cargoGit, "/usr/local/cargo/git"))
	args = append(args, "-v", fmt.Sprintf("%s:%s", cargoTarget, targetMount))
	args = append(args, "--workdir", "/workspace")
	args = append(args, "--name", containerName)
	args = append(args, opts.Tag)
	if opts.Command != "" {
		args = append(args, "sh", "-lc", opts.Command)
	}
	return args, containerName
}

// RunTestContainer runs opts.Command inside a container of opts.Tag and
// returns the container's exit code, which `docker run` forwards unchanged.
// Output is streamed when verbosity allows; otherwise the last lines of each
// stream are retained so failures in quiet mode still surface context.
func RunTestContainer(ctx context.Context, opts RunOptions) (int, error) {
	args, containerName := BuildRunArgs(opts)
	if Allowed(opts.Selected, V2) {
		log.Printf("%s RUN> docker %s", sprint(opts.Col, Prefix(V2, "HOST")), strings.Join(args, " "))
	}

	// A stale container with the same name would make `docker run` fail.
	_ = exec.Command("docker", "rm", "-f", containerName).Run()

	cmd := exec.CommandContext(ctx, "docker", args...)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return -1, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return -1, err
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("docker run: %w", err)
	}

	const maxLines = 200
	lastStdout := make([]string, 0, maxLines)
	lastStderr := make([]string, 0, maxLines)
	push := func(buf *[]string, line string) {
		if len(*buf) < maxLines {
			*buf = append(*buf, line)
			return
		}
		copy((*buf)[0:], (*buf)[1:])
		(*buf)[maxLines-1] = line
	}

	stream := Allowed(opts.Selected, V1)
	doneCh := make(chan struct{}, 2)
	go func() {
		scanner := bufio.NewScanner(stdoutPipe)
		for scanner.Scan() {
			line := scanner.Text()
			if stream {
				fmt.Fprintf(os.Stdout, "%s %s\n", sprint(opts.Col, Prefix(V1, "CTR")), line)
			} else {
				push(&lastStdout, line)
			}
		}
		doneCh <- struct{}{}
	}()
	go func() {
		scanner := bufio.NewScanner(stderrPipe)
		for scanner.Scan() {
			line := scanner.Text()
			if stream {
				fmt.Fprintf(os.Stderr, "%s %s\n", sprint(opts.Col, Prefix(V1, "CTR")), line)
			} else {
				push(&lastStderr, line)
			}
		}
		doneCh <- struct{}{}
	}()
	<-doneCh
	<-doneCh

	waitErr := cmd.Wait()
	if waitErr == nil {
		return 0, nil
	}
	if ee, ok := waitErr.(*exec.ExitError); ok {
		if !stream {
			dumpTail(os.Stdout, lastStdout)
			dumpTail(os.Stderr, lastStderr)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return ee.ExitCode(), fmt.Errorf("docker run timed out: %w", ctx.Err())
		}
		return ee.ExitCode(), nil
	}
	return -1, fmt.Errorf("docker run: %w", waitErr)
}

func dumpTail(w *os.File, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func sprint(col *color.Color, s string) string {
	if col == nil {
		return s
	}
	return col.Sprint(s)
}
