// Package process runs the external programs a build step depends on: the
// documentation generator, rrdtool and interpreter module probes.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/jarmon/jarmonbuild/internal/logfields"
	"github.com/jarmon/jarmonbuild/internal/observability"
)

// maxOutput bounds the captured output carried in an ExitError.
const maxOutput = 4096

// Command is a program invocation without a shell.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a successful run.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes commands and resolves programs. Implementations block
// until the child exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// ExitError reports a command that could not start or exited non-zero.
// Code is -1 when the process never ran.
type ExitError struct {
	Command string
	Code    int
	Output  string
	Err     error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
	if e.Code < 0 {
		msg = fmt.Sprintf("%s: %v", e.Command, e.Err)
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	reporter observability.Reporter
	lookPath func(string) (string, error)
}

// NewExecRunner returns a Runner narrating through r.
func NewExecRunner(r observability.Reporter) *ExecRunner {
	if r == nil {
		r = observability.Discard()
	}
	return &ExecRunner{reporter: r, lookPath: exec.LookPath}
}

// LookPath resolves name on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return r.lookPath(name)
}

// Run executes cmd and captures stdout and stderr separately.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	// #nosec G204 -- program and arguments come from build configuration, no shell involved
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf

	r.reporter.Debug("Running command",
		logfields.Command(cmd.String()),
		logfields.Step(observability.GetContext(ctx).Step))
	start := time.Now()
	err := c.Run()
	res := Result{Stdout: outBuf.String(), Stderr: errBuf.String()}
	if err == nil {
		r.reporter.Debug("Command finished",
			logfields.Command(cmd.Name),
			logfields.DurationMS(float64(time.Since(start).Milliseconds())))
		return res, nil
	}

	code := -1
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		code = ee.ExitCode()
	}
	return res, &ExitError{
		Command: cmd.String(),
		Code:    code,
		Output:  trimOutput(res.Stderr, res.Stdout),
		Err:     err,
	}
}

// trimOutput prefers stderr, falls back to stdout, and keeps the tail.
func trimOutput(stderr, stdout string) string {
	out := strings.TrimSpace(stderr)
	if out == "" {
		out = strings.TrimSpace(stdout)
	}
	if len(out) > maxOutput {
		out = "..." + out[len(out)-maxOutput:]
	}
	return out
}
