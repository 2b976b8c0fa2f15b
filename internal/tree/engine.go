// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"io"
	"os"
	"path/filepath"

	"arbor-cli/internal/repo"
	"arbor-cli/internal/scm"

	"github.com/charmbracelet/log"
)

// Engine runs the tree algorithms. One Engine is built per invocation; the
// logger carries the verbosity decision so there is no global flag.
type Engine struct {
	Reg *scm.Registry
	Log *log.Logger

	// Out receives the ls/status listings; In feeds the publish
	// confirmation prompt.
	Out io.Writer
	In  io.Reader

	// Root anchors the relative paths printed in messages. Usually the
	// directory the command was invoked from.
	Root string

	// PostDeploy, when set, runs after deploy finishes materializing a
	// tree. External collaborator hook.
	PostDeploy func(prog *repo.Program) error
}

// New creates an Engine with stdio defaults.
func New(reg *scm.Registry, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "arbor"})
	}
	return &Engine{
		Reg: reg,
		Log: logger,
		Out: os.Stdout,
		In:  os.Stdin,
	}
}

// display renders a path relative to the engine root for messages.
func (e *Engine) display(path string) string {
	if e.Root == "" || e.Root == path {
		return filepath.Base(path)
	}
	rel, err := filepath.Rel(e.Root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func relTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// canUpdate is the safety gate evaluated before any destructive removal of
// a library. All three conditions must hold: the library is restorable from
// a remote (or force), its working tree is clean (or a clean update was
// requested), and it has no unpushed commits (or force). Force never
// substitutes for the dirty-tree condition.
func (e *Engine) canUpdate(r *repo.Repo, clean, force bool) error {
	if (r.IsLocal || r.URL == "") && !force {
		return &GateViolation{Reason: GateLocalOnly, Name: r.Name, Path: r.Path}
	}

	if !clean {
		dirty, err := r.Backend.Dirty(r.Path)
		if err != nil {
			return err
		}
		if dirty {
			return &GateViolation{Reason: GateDirty, Name: r.Name, Path: r.Path}
		}
	}

	if !force {
		outgoing, err := r.Backend.Outgoing(r.Path)
		if err != nil {
			return err
		}
		if outgoing {
			return &GateViolation{Reason: GateOutgoing, Name: r.Name, Path: r.Path}
		}
	}

	return nil
}
