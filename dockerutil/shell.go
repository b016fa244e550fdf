package dockerutil

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/moby/term"
)

// RunInteractiveShell starts an interactive shell inside the given image,
// wiring TTY/stdin/out and mounting the workspace like RunTestContainer does.
// Useful for debugging a failing suite in the exact container environment.
func RunInteractiveShell(tag, rootDir string, selected Verb) error {
	if Allowed(selected, V2) {
		log.Printf("%s RUN> docker run -it -v %s:/workspace %s bash -l", Prefix(V2, "HOST"), rootDir, tag)
	}
	ctx := context.Background()
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("docker client: %w", err)
	}
	exists, err := ImageExists(ctx, cli, tag)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("image %s not found", tag)
	}
	cfg := &container.Config{
		Image:      tag,
		Entrypoint: []string{"/bin/bash", "-l"},
		WorkingDir: "/workspace",
		Tty:        true,
		OpenStdin:  true,
	}
	hostCfg := &container.HostConfig{
		Binds:      []string{fmt.Sprintf("%s:/workspace", rootDir)},
		AutoRemove: true,
	}
	const shellName = "test-orch-shell"
	_ = cli.ContainerRemove(context.Background(), shellName, types.ContainerRemoveOptions{Force: true})
	created, err := cli.ContainerCreate(ctx, cfg, hostCfg, nil, nil, shellName)
	if err != nil {
		return fmt.Errorf("container create: %w", err)
	}
	inFd, _ := term.GetFdInfo(os.Stdin)
	_, isTerm := term.GetFdInfo(os.Stdout)
	var restore func() error
	if isTerm {
		state, err := term.MakeRaw(inFd)
		if err == nil {
			restore = func() error { return term.RestoreTerminal(inFd, state) }
		}
	}
	if restore != nil {
		defer restore()
	}
	attach, err := cli.ContainerAttach(ctx, created.ID, types.ContainerAttachOptions{
		Stream: true, Stdin: true, Stdout: true, Stderr: true, Logs: true,
	})
	if err != nil {
		return fmt.Errorf("container attach: %w", err)
	}
	defer attach.Close()
	if err := cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return fmt.Errorf("container start: %w", err)
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _, _ = io.Copy(attach.Conn, os.Stdin) }()
	go func() { defer wg.Done(); _, _ = io.Copy(os.Stdout, attach.Conn) }()

	// Wait for container to exit; treat normal exit as success.
	statusCh, errCh := cli.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	var shellExit int64 = 0
	select {
	case st := <-statusCh:
		shellExit = st.StatusCode
	case err := <-errCh:
		// Close streams and wait for copy goroutines to finish
		attach.Close()
		wg.Wait()
		return fmt.Errorf("container wait: %w", err)
	}

	// Close streams and wait for I/O goroutines to unwind cleanly
	attach.Close()
	wg.Wait()

	// Do not treat non-zero exit as an error in interactive mode; user may exit with custom code.
	if Allowed(selected, V2) {
		log.Printf("%s interactive shell exited with code %d", Prefix(V2, "HOST"), shellExit)
	}
	return nil
}
