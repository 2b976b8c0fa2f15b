// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"arbor-cli/internal/scm"
)

// RunHook executes a configured hook script in dir with the built-in
// shell interpreter. The script runs in-process, so hooks behave the same
// on every platform regardless of the system shell.
//
// The hook environment inherits the process environment plus extraEnv
// entries in KEY=VALUE form. A non-zero script exit surfaces as
// scm.ProcessError carrying the script's exit status.
func RunHook(ctx context.Context, script, dir string, extraEnv []string, stdout, stderr io.Writer) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "hook")
	if err != nil {
		return fmt.Errorf("hook syntax error: %w", err)
	}

	opts := []interp.RunnerOption{
		interp.Dir(dir),
		interp.StdIO(nil, stdout, stderr),
	}
	if len(extraEnv) > 0 {
		opts = append(opts, interp.Env(expand.ListEnviron(append(os.Environ(), extraEnv...)...)))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create hook interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &scm.ProcessError{Cmd: "hook", ExitCode: int(exitStatus)}
		}
		return fmt.Errorf("hook execution failed: %w", err)
	}
	return nil
}
