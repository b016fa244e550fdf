package dockerutil

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/fatih/color"
	"github.com/moby/term"
)

// BuildTestImage builds the image used to run the cargo test suite in
// isolation. The Dockerfile lives at docker/Dockerfile inside contextDir and
// accepts a BASE_IMAGE build arg selecting the Rust base.
func BuildTestImage(tag, contextDir, baseImage string, noCache, pull bool, selected Verb, col *color.Color) error {
	if baseImage == "" {
		baseImage = "rust:slim"
	}
	if Allowed(selected, V2) {
		log.Println("RUN>", "docker build -t", tag, contextDir)
	}
	ctx := context.Background()
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("docker client: %w", err)
	}
	buildCtx, err := TarDirectory(contextDir)
	if err != nil {
		return fmt.Errorf("create build context: %w", err)
	}
	defer buildCtx.Close()
	opts := types.ImageBuildOptions{
		Tags:       []string{tag},
		Remove:     true,
		NoCache:    noCache,
		PullParent: pull,
		Dockerfile: "docker/Dockerfile",
		BuildArgs: map[string]*string{
			"BASE_IMAGE": &baseImage,
		},
	}
	resp, err := cli.ImageBuild(ctx, buildCtx, opts)
	if err != nil {
		return fmt.Errorf("image build: %w", err)
	}
	defer resp.Body.Close()
	// Always parse the JSON message stream so build errors are detected even
	// when the output is not rendered.
	fd, isTerm := term.GetFdInfo(os.Stdout)
	var out io.Writer = io.Discard
	if Allowed(selected, V2) {
		out = &prefixWriter{lvl: V2, scope: "BUILD", w: os.Stdout, col: col}
	}
	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, out, fd, isTerm, nil); err != nil {
		return fmt.Errorf("render build output: %w", err)
	}
	return nil
}

// TarDirectory streams dir as a tar archive, for use as a docker build context.
func TarDirectory(dir string) (io.ReadCloser, error) {
	pr, pw := io.Pipe()
	tw := tar.NewWriter(pw)
	go func() {
		walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = rel
			if info.IsDir() {
				hdr.Name += "/"
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.Copy(tw, f)
				if err != nil {
					return err
				}
			}
			return nil
		})
		// A failed walk must surface to the reader, not truncate the context.
		if cerr := tw.Close(); walkErr == nil {
			walkErr = cerr
		}
		if walkErr != nil {
			pw.CloseWithError(walkErr)
			return
		}
		pw.Close()
	}()
	return pr, nil
}
