// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Runner executes backend processes. Every invocation names its working
// directory explicitly through exec.Cmd.Dir; the process-wide current
// directory is never mutated.
type Runner struct {
	logger *log.Logger
}

// NewRunner creates a Runner that logs invocations through the given logger.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "arbor"})
	}
	return &Runner{logger: logger}
}

// Verbose reports whether the runner's logger emits debug output. Backends
// use this to pick between quiet and verbose flags on their executables.
func (r *Runner) Verbose() bool {
	return r.logger.GetLevel() <= log.DebugLevel
}

// Run executes a backend command in dir, inheriting the caller's stdio so
// interactive steps (commit message editors, credential prompts) work.
// A non-zero exit is returned as *ProcessError; a missing executable as
// *ToolNotFoundError.
func (r *Runner) Run(dir, name string, args ...string) error {
	r.logger.Debug("exec", "cmd", name+" "+strings.Join(args, " "), "dir", dir)

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return r.wrap(name, args, cmd.Run(), "")
}

// Output executes a backend command in dir and captures its stdout.
// Stderr is captured separately and attached to any ProcessError.
func (r *Runner) Output(dir, name string, args ...string) (string, error) {
	r.logger.Debug("query", "cmd", name+" "+strings.Join(args, " "), "dir", dir)

	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := r.wrap(name, args, cmd.Run(), strings.TrimSpace(stderr.String()))
	return stdout.String(), err
}

func (r *Runner) wrap(name string, args []string, err error, stderr string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return &ToolNotFoundError{Tool: name, Err: err}
	}

	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ProcessError{
			Cmd:      name + " " + strings.Join(args, " "),
			ExitCode: ee.ExitCode(),
			Stderr:   stderr,
		}
	}

	return err
}
