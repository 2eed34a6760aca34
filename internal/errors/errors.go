// Package errors provides sentinel errors and custom error types for the stacked application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrNotInRepository indicates that the working directory is not inside a jj workspace
	ErrNotInRepository = errors.New("not in a jj repository")

	// ErrInvalidConfig indicates that the repository configuration failed validation
	ErrInvalidConfig = errors.New("invalid config")

	// ErrConfigCreated indicates that a default config was written and the command must be re-run
	ErrConfigCreated = errors.New("default config created")

	// ErrTargetNotInStack indicates that a merge target bookmark is not part of the current stack
	ErrTargetNotInStack = errors.New("target not found in stack")

	// ErrPRNotFound indicates that no pull request exists for a bookmark
	ErrPRNotFound = errors.New("pull request not found")

	// ErrInteractiveDisabled indicates that a prompt was requested while prompts are disabled
	ErrInteractiveDisabled = errors.New("interactive prompts are disabled (STACKED_TEST_NO_INTERACTIVE is set)")
)

// CommandError represents a failed invocation of an external command (jj, gh)
type CommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += " " + strings.Join(e.Args, " ")
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\n%s", strings.TrimSpace(e.Stderr))
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError
func NewCommandError(command string, args []string, stdout, stderr string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// ConfigCreatedError is returned when a missing config file was initialized with defaults
type ConfigCreatedError struct {
	Path string
}

func (e *ConfigCreatedError) Error() string {
	return fmt.Sprintf("initialized default config at %s, please re-run the command", e.Path)
}

// Is returns true if the target error is ErrConfigCreated
func (e *ConfigCreatedError) Is(target error) bool {
	return target == ErrConfigCreated
}

// ConfigError lists every validation issue found in a config file
type ConfigError struct {
	Path   string
	Issues []string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid config in %s:", e.Path)
	for _, issue := range e.Issues {
		fmt.Fprintf(&b, "\n  - %s", issue)
	}
	return b.String()
}

// Is returns true if the target error is ErrInvalidConfig
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// TargetNotInStackError represents a merge target that the resolved stack does not contain
type TargetNotInStackError struct {
	Target string
}

func (e *TargetNotInStackError) Error() string {
	return fmt.Sprintf("bookmark %s not found in stack", e.Target)
}

// Is returns true if the target error is ErrTargetNotInStack
func (e *TargetNotInStackError) Is(target error) bool {
	return target == ErrTargetNotInStack
}

// NewTargetNotInStackError creates a new TargetNotInStackError
func NewTargetNotInStackError(target string) *TargetNotInStackError {
	return &TargetNotInStackError{Target: target}
}

// PRNotFoundError represents a bookmark that has no pull request on the review host
type PRNotFoundError struct {
	Branch string
}

func (e *PRNotFoundError) Error() string {
	return fmt.Sprintf("no pull request found for branch %s", e.Branch)
}

// Is returns true if the target error is ErrPRNotFound
func (e *PRNotFoundError) Is(target error) bool {
	return target == ErrPRNotFound
}

// NewPRNotFoundError creates a new PRNotFoundError
func NewPRNotFoundError(branch string) *PRNotFoundError {
	return &PRNotFoundError{Branch: branch}
}
