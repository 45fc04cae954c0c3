// Package runner starts the external tools the release action drives
// (npm, yarn, npx) and waits for them.
//
// A Command carries its own environment overlay. Credentials reach the child
// process through that overlay only: they are never written into the parent
// process environment and never appear in the argument list or in logs.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
)

// Command is a single child-process invocation.
type Command struct {
	// Name is the program to run, resolved through PATH.
	Name string
	// Args are the program arguments.
	Args []string
	// Dir is the working directory.
	Dir string
	// Env is added on top of the parent environment for this invocation only.
	Env map[string]string
}

// String renders the command line without the environment overlay.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Runner executes commands synchronously.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExitError reports a command that ran and exited unsuccessfully.
type ExitError struct {
	// Command is the rendered command line.
	Command string
	// Dir is the working directory the command ran in.
	Dir string
	// Code is the process exit code, or -1 when it was killed by a signal.
	Code int
	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q in %q exited with code %d", e.Command, e.Dir, e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// errEmptyCommand is returned for a Command without a program name.
var errEmptyCommand = errors.New("command name is empty")

// Exec runs commands with os/exec, wiring the child's standard streams to its own.
type Exec struct {
	// Stdin, Stdout and Stderr default to the process streams when nil.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec that inherits the controlling terminal.
func NewExec() *Exec {
	return &Exec{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts cmd and waits for it to exit.
func (r *Exec) Run(ctx context.Context, cmd Command) error {
	if cmd.Name == "" {
		return errEmptyCommand
	}

	child := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	child.Dir = cmd.Dir
	child.Env = MergeEnv(os.Environ(), cmd.Env)
	child.Stdin = r.Stdin
	child.Stdout = r.Stdout
	child.Stderr = r.Stderr

	err := child.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Command: cmd.String(),
			Dir:     cmd.Dir,
			Code:    exitErr.ExitCode(),
			Err:     err,
		}
	}

	return fmt.Errorf("start %q: %w", cmd.String(), err)
}

// MergeEnv returns base with overlay applied. Overlay keys replace existing
// entries; the result is deterministic so child environments are reproducible.
func MergeEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}

	merged := make([]string, 0, len(base)+len(overlay))

	for _, entry := range base {
		key, _, _ := strings.Cut(entry, "=")
		if _, replaced := overlay[key]; replaced {
			continue
		}

		merged = append(merged, entry)
	}

	for _, key := range slices.Sorted(maps.Keys(overlay)) {
		merged = append(merged, key+"="+overlay[key])
	}

	return merged
}
