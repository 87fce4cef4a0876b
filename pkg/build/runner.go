//go:generate mockgen -destination=mocks/runner.go . Runner
package build

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"github.com/glorpus-work/gleam-pkg/internal/logger"
	pkgerrors "github.com/glorpus-work/gleam-pkg/pkg/errors"
)

// Command is a single toolchain invocation.
type Command struct {
	Args   []string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Runner executes toolchain commands.
type Runner interface {
	// Run executes cmd to completion. Any failure is a *errors.BuildError
	// carrying the captured stderr.
	Run(ctx context.Context, cmd Command) error
	// Output executes cmd and returns its stdout.
	Output(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands as subprocesses.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner. Stdout and stderr are streamed to cmd.Stdout and
// cmd.Stderr while stderr is also captured for the error.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	return r.run(ctx, cmd, cmd.Stdout)
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) (string, error) {
	var stdout bytes.Buffer
	if err := r.run(ctx, cmd, &stdout); err != nil {
		return "", err
	}
	return stdout.String(), nil
}

func (r *ExecRunner) run(ctx context.Context, cmd Command, stdout io.Writer) error {
	if len(cmd.Args) == 0 || cmd.Args[0] == "" {
		return &pkgerrors.BuildError{Command: cmd.Args, Dir: cmd.Dir, Err: errors.New("empty command")}
	}

	logger.DebugfWithFields(logger.Fields{"dir": cmd.Dir}, "Running %s", strings.Join(cmd.Args, " "))

	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	c.Stdout = stdout
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(cmd.Stderr, &stderr)
	} else {
		c.Stderr = &stderr
	}

	if err := c.Run(); err != nil {
		be := &pkgerrors.BuildError{
			Command: cmd.Args,
			Dir:     cmd.Dir,
			Stderr:  stderr.String(),
			Err:     err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			be.ExitCode = exitErr.ExitCode()
		}
		return be
	}
	return nil
}
