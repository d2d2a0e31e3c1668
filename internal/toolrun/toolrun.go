// Package toolrun executes the external tools of the pipeline (python, pip,
// pyinstaller, cpack) and streams their output into the structured log.
package toolrun

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/oshokin/desktop-packager/internal/logger"
)

// Runner runs an external command and waits for it.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, name string, args ...string) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) error {
	return f(ctx, name, args...)
}

// ExternalToolError reports a tool that could not be started or exited with a non-zero status.
type ExternalToolError struct {
	// Tool is the executable that was run.
	Tool string
	// Args are the arguments it was given.
	Args []string
	// ExitCode is the exit status, or -1 if the process never exited normally.
	ExitCode int
	// Err is the underlying exec error.
	Err error
}

// Error implements the error interface.
func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s %s failed (exit code %d): %v",
		filepath.Base(e.Tool), strings.Join(e.Args, " "), e.ExitCode, e.Err)
}

// Unwrap returns the underlying exec error.
func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// ExecRunner runs commands with os/exec. The zero value is ready to use.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

// Run starts name with args, logs its stdout at debug and its stderr at info
// level, and waits for it. Cancelling ctx kills the process.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	ctx = logger.WithKV(ctx, "tool", filepath.Base(name))
	logger.InfoKV(ctx, "Running external tool", "command", name, "args", args)

	stdout := logger.NewLineWriter(ctx, zapcore.DebugLevel)
	stderr := logger.NewLineWriter(ctx, zapcore.InfoLevel)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	err := cmd.Run()

	stdout.Flush()
	stderr.Flush()

	if err != nil {
		toolErr := &ExternalToolError{
			Tool:     name,
			Args:     args,
			ExitCode: -1,
			Err:      err,
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			toolErr.Err = errors.Join(err, ctxErr)
		}

		return toolErr
	}

	logger.Debug(ctx, "External tool finished")

	return nil
}
