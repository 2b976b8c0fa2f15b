// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"arbor-cli/internal/scm"
)

// MacrosFileName is the optional per-program macro definition file. Each
// non-empty, non-comment line becomes a -D argument to the build tool.
const MacrosFileName = "MACROS.txt"

// Invocation describes one run of the external build tool.
type Invocation struct {
	// Tool is the build executable name or path.
	Tool string
	// Toolchain selects the compiler suite, passed as -t.
	Toolchain string
	// Target selects the build target, passed as -m.
	Target string
	// Sources are additional source directories, passed as --source.
	Sources []string
	// BuildDir is the output directory, passed as --build.
	BuildDir string
	// Macros are preprocessor definitions, passed as -D.
	Macros []string
	// Extra is appended verbatim after the generated arguments.
	Extra []string
}

// Args assembles the tool's argument list.
func (inv *Invocation) Args() []string {
	var args []string
	if inv.Toolchain != "" {
		args = append(args, "-t", inv.Toolchain)
	}
	if inv.Target != "" {
		args = append(args, "-m", inv.Target)
	}
	for _, src := range inv.Sources {
		args = append(args, "--source", src)
	}
	if inv.BuildDir != "" {
		args = append(args, "--build", inv.BuildDir)
	}
	for _, m := range inv.Macros {
		args = append(args, "-D", m)
	}
	return append(args, inv.Extra...)
}

// Run executes the build tool in dir with inherited stdio. Exit failures
// surface as scm.ProcessError so the caller can propagate the tool's exit
// code, and a missing executable surfaces as scm.ToolNotFoundError.
func (inv *Invocation) Run(ctx context.Context, dir string, logger *log.Logger) error {
	if inv.Tool == "" {
		return fmt.Errorf("no build tool configured")
	}

	args := inv.Args()
	logger.Debug("running build tool", "tool", inv.Tool, "args", strings.Join(args, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, inv.Tool, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &scm.ProcessError{
			Cmd:      inv.Tool + " " + strings.Join(args, " "),
			ExitCode: exitErr.ExitCode(),
		}
	}
	return &scm.ToolNotFoundError{Tool: inv.Tool, Err: err}
}

// ReadMacros loads macro definitions from MACROS.txt in dir. A missing
// file yields no macros.
func ReadMacros(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, MacrosFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	var macros []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		macros = append(macros, line)
	}
	return macros, sc.Err()
}
