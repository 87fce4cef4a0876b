// Package build drives the gleam toolchain against an unpacked package and
// locates the executable it produces.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	"github.com/glorpus-work/gleam-pkg/pkg/config"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
)

// Builder runs the build steps of a package.
type Builder struct {
	runner       Runner
	gleam        string
	plugin       string
	outputDir    string
	versionQuery []string
	stdout       io.Writer
	stderr       io.Writer
}

// Option configures a Builder.
type Option func(*Builder)

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(b *Builder) {
		b.runner = r
	}
}

// WithOutput sets where toolchain output is streamed to.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(b *Builder) {
		b.stdout = stdout
		b.stderr = stderr
	}
}

// NewBuilder creates a Builder from the toolchain configuration.
func NewBuilder(cfg config.ToolchainConfig, opts ...Option) *Builder {
	b := &Builder{
		runner:       NewExecRunner(),
		gleam:        cfg.Gleam,
		plugin:       cfg.Plugin,
		outputDir:    cfg.OutputDir,
		versionQuery: cfg.VersionQuery,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Steps returns the commands Build runs, in order.
func (b *Builder) Steps() [][]string {
	return [][]string{
		{b.gleam, "build"},
		{b.gleam, "add", b.plugin},
		{b.gleam, "run", "-m", b.plugin, "--", "--out=" + b.outputDir},
	}
}

// Build compiles the package in contentsDir and exports it as an escript.
// The first failing step aborts the build.
func (b *Builder) Build(ctx context.Context, contentsDir string) error {
	for _, args := range b.Steps() {
		logger.Infof("Running `%s`", strings.Join(args, " "))
		if err := b.runner.Run(ctx, Command{
			Args:   args,
			Dir:    contentsDir,
			Stdout: b.stdout,
			Stderr: b.stderr,
		}); err != nil {
			return asBuildError(err, args, contentsDir)
		}
	}
	return nil
}

// RuntimeVersion runs the version query and returns its trimmed output.
func (b *Builder) RuntimeVersion(ctx context.Context) (string, error) {
	out, err := b.runner.Output(ctx, Command{Args: b.versionQuery})
	if err != nil {
		return "", asBuildError(err, b.versionQuery, "")
	}
	v := strings.TrimSpace(out)
	if v == "" {
		return "", &pkgerrors.BuildError{Command: b.versionQuery, Err: errors.New("runtime version query printed nothing")}
	}
	return v, nil
}

// VersionQuery returns the command used to fingerprint the runtime.
func (b *Builder) VersionQuery() []string {
	return append([]string(nil), b.versionQuery...)
}

// Artifact returns the path of the executable built for name.
func (b *Builder) Artifact(contentsDir, name string) (string, error) {
	path := filepath.Join(contentsDir, b.outputDir, name)
	info, err := os.Stat(path)
	if err != nil {
		return "", &pkgerrors.BuildError{
			Command: b.Steps()[2],
			Dir:     contentsDir,
			Err:     fmt.Errorf("build produced no executable at %s: %w", path, err),
		}
	}
	if !info.Mode().IsRegular() {
		return "", &pkgerrors.BuildError{
			Command: b.Steps()[2],
			Dir:     contentsDir,
			Err:     fmt.Errorf("build output %s is not a regular file", path),
		}
	}
	return path, nil
}

func asBuildError(err error, args []string, dir string) error {
	if errors.Is(err, pkgerrors.ErrBuild) {
		return err
	}
	return &pkgerrors.BuildError{Command: args, Dir: dir, Err: err}
}
