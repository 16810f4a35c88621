// Package execx runs external programs as structured argument lists.
//
// Commands are never handed to a shell, so arguments reach the child process
// exactly as given.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Cmd describes a single external invocation.
type Cmd struct {
	Name string
	Args []string
	// Env is the complete child environment. Nil inherits the current process
	// environment.
	Env []string
}

// String renders the command line for logs and dry runs.
func (c Cmd) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quote(c.Name))
	for _, a := range c.Args {
		parts = append(parts, quote(a))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`;&|<>*?()[]{}#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ExternalCommandError reports an external program that could not be started
// or exited non-zero.
type ExternalCommandError struct {
	Cmd    Cmd
	Code   int
	Stderr string
	Err    error
}

func (e *ExternalCommandError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Cmd.Name, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", e.Cmd.Name, e.Code)
}

func (e *ExternalCommandError) Unwrap() error { return e.Err }

// ExitCode returns the exit status carried by err, 0 for nil and 1 for any
// error that is not an ExternalCommandError.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExternalCommandError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	return 1
}

// Runner executes commands.
type Runner interface {
	// Run executes c with the caller's stdio attached.
	Run(ctx context.Context, c Cmd) error
	// Capture executes c and returns its stdout. Stderr is collected into the
	// returned error on failure.
	Capture(ctx context.Context, c Cmd) (string, error)
}

// Exec is the os/exec backed Runner.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec wired to the process stdio.
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run implements Runner.
func (x *Exec) Run(ctx context.Context, c Cmd) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = c.Env
	cmd.Stdin = x.Stdin
	cmd.Stdout = x.Stdout
	cmd.Stderr = x.Stderr
	return wrap(c, cmd.Run(), "")
}

// Capture implements Runner.
func (x *Exec) Capture(ctx context.Context, c Cmd) (string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Env = c.Env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), wrap(c, err, stderr.String())
}

func wrap(c Cmd, err error, stderr string) error {
	if err == nil {
		return nil
	}
	code := 1
	var ee *exec.ExitError
	if errors.As(err, &ee) && ee.ExitCode() > 0 {
		code = ee.ExitCode()
	}
	return &ExternalCommandError{Cmd: c, Code: code, Stderr: stderr, Err: err}
}
