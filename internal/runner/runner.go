// Package runner executes external codec programs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"
)

// ErrCommandFailed indicates the external program could not be started or
// exited with a non-zero status.
var ErrCommandFailed = errors.New("runner: command failed")

// Runner runs a named program with an argument vector.
// It lets the codec adapter be tested without spawning processes.
type Runner interface {
	// Run blocks until the program exits. If quiet is true the program's
	// standard output and error are discarded; otherwise they pass through.
	// A nil error means the program exited with status zero.
	Run(ctx context.Context, name string, args []string, quiet bool) error
}

// Compile-time check that Exec implements Runner.
var _ Runner = (*Exec)(nil)

// Exec runs programs with os/exec.
type Exec struct {
	dir    string
	stdout io.Writer
	stderr io.Writer
	logger *zap.Logger
}

// Option configures an Exec.
type Option func(*Exec)

// WithDir sets the working directory of launched programs.
// By default programs inherit the current working directory.
func WithDir(dir string) Option {
	return func(e *Exec) { e.dir = dir }
}

// WithOutput sets where non-quiet programs write. Defaults to os.Stdout and os.Stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(e *Exec) {
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exec) { e.logger = l }
}

// NewExec returns an os/exec backed Runner.
func NewExec(opts ...Option) *Exec {
	e := &Exec{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes name with args and waits for it to exit.
func (e *Exec) Run(ctx context.Context, name string, args []string, quiet bool) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.dir
	if !quiet {
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	}

	e.logger.Debug("running external command",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Bool("quiet", quiet),
	)

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		e.logger.Debug("external command exited with error",
			zap.String("command", name),
			zap.Int("exitCode", exitErr.ExitCode()),
		)
		return fmt.Errorf("%w: %s exited with status %d", ErrCommandFailed, name, exitErr.ExitCode())
	}
	return fmt.Errorf("%w: starting %s: %v", ErrCommandFailed, name, err)
}
