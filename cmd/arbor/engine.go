// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/repo"
	"arbor-cli/internal/scm"
	"arbor-cli/internal/tree"

	"github.com/charmbracelet/log"
)

// newLogger builds the per-invocation logger. Verbosity travels with the
// logger instead of a global flag.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "arbor"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// newEngine builds the tree engine for one command invocation, anchored at
// the current directory for message rendering.
func newEngine() *tree.Engine {
	logger := newLogger()
	eng := tree.New(scm.NewRegistry(scm.NewRunner(logger)), logger)
	if cwd, err := os.Getwd(); err == nil {
		eng.Root = cwd
	}
	return eng
}

// enclosingRepo resolves the repository root the current directory belongs
// to. Tree operations act on that root, never on the bare cwd.
func enclosingRepo(eng *tree.Engine) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	root, ok := repo.FindRoot(eng.Reg, cwd)
	if !ok {
		return "", issue.NewErrorContext().
			WithOperation("locating the enclosing repository").
			WithResource(cwd).
			WithSuggestion("run this command inside a program or library checkout").
			WithSuggestion("create a program here first: arbor new <name>").
			Wrap(errors.New("no repository found in this directory or any parent")).
			BuildError()
	}
	return root, nil
}

// fetchOptions merges the per-command fetch flags with configured defaults.
func fetchOptions(depth int, protocol string) tree.FetchOptions {
	if depth == 0 {
		depth = cfg.Depth
	}
	if protocol == "" {
		protocol = cfg.Protocol
	}
	return tree.FetchOptions{Depth: depth, Protocol: protocol}
}
