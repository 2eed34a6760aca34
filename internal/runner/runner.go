// Package runner executes external commands (jj, gh) on behalf of the adapters.
//
// Callers depend on the CommandRunner interface so tests can substitute a
// recording fake instead of spawning processes.
package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	stackederrors "stacked.dev/stacked/internal/errors"
)

// CommandRunner runs external commands
type CommandRunner interface {
	// Run executes a command with captured output and returns trimmed stdout.
	// A non-zero exit yields a *errors.CommandError carrying stderr.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// RunInteractive executes a command with stdin/stdout/stderr connected to the terminal.
	RunInteractive(ctx context.Context, name string, args ...string) error
}

// ExecRunner implements CommandRunner with os/exec
type ExecRunner struct {
	workingDir string
}

// NewExecRunner creates a new ExecRunner. An empty workingDir uses the process working directory.
func NewExecRunner(workingDir string) *ExecRunner {
	return &ExecRunner{workingDir: workingDir}
}

// Run executes a command and returns its trimmed stdout
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", stackederrors.NewCommandError(name, args, stdout.String(), stderr.String(), ctx.Err())
		}
		return "", stackederrors.NewCommandError(name, args, stdout.String(), stderr.String(), err)
	}
	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}

// RunInteractive executes a command attached to the terminal
func (r *ExecRunner) RunInteractive(ctx context.Context, name string, args ...string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return stackederrors.NewCommandError(name, args, "", "", err)
	}
	return nil
}
