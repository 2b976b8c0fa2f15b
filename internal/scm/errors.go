// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"errors"
	"fmt"
)

type (
	// ToolNotFoundError reports that a backend executable could not be
	// located or executed at all.
	ToolNotFoundError struct {
		Tool string
		Err  error
	}

	// ProcessError reports a backend invocation that exited non-zero.
	// The exit code is propagated verbatim to the process exit status.
	ProcessError struct {
		Cmd      string
		ExitCode int
		Stderr   string
	}

	// RevisionNotFoundError reports a checkout to a pinned revision that
	// failed after a successful clone.
	RevisionNotFoundError struct {
		Revision string
		URL      string
		Err      error
	}
)

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("could not execute %q", e.Tool)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Cmd, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
}

func (e *RevisionNotFoundError) Error() string {
	return fmt.Sprintf("unable to update to revision %q", e.Revision)
}

func (e *RevisionNotFoundError) Unwrap() error { return e.Err }

// ExitedWith reports whether err is a ProcessError with the given exit code.
func ExitedWith(err error, code int) bool {
	var pe *ProcessError
	return errors.As(err, &pe) && pe.ExitCode == code
}
