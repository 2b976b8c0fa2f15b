// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"bufio"
	"fmt"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/repo"
)

// Publish commits and pushes the tree at path, children before parent, so
// that a child's remote state is final before the parent referencing it is
// committed. all pushes every branch instead of only the current one.
func (e *Engine) Publish(path string, all bool) error {
	e.Log.Info("checking for local modifications", "path", e.display(path))
	return e.publish(path, all)
}

func (e *Engine) publish(path string, all bool) error {
	r, err := repo.FromDir(e.Reg, path)
	if err != nil {
		return err
	}

	if r.IsLocal {
		return issue.NewErrorContext().
			WithOperation("publish repository").
			WithResource(r.Path).
			WithSuggestion("Associate the repository with a remote URL first").
			BuildError()
	}

	for _, lib := range r.Children {
		if err := lib.Check(); err != nil {
			return e.staleReference(err)
		}
		if err := e.publish(lib.Path, all); err != nil {
			return err
		}
	}

	// Child publication may have moved revisions; refresh this node's
	// references before committing it.
	if err := e.sync(r.Path, SyncOptions{}); err != nil {
		return err
	}

	dirty, err := r.Backend.Dirty(r.Path)
	if err != nil {
		return err
	}
	if dirty {
		e.Log.Info("uncommitted changes", "repository", r.Name, "path", e.display(r.Path))
		fmt.Fprint(e.Out, "Press enter to commit and push: ")
		_, _ = bufio.NewReader(e.In).ReadString('\n') //nolint:errcheck // EOF means proceed
		if err := r.Backend.Commit(r.Path); err != nil {
			return err
		}
	}

	outgoing, err := r.Backend.Outgoing(r.Path)
	if err != nil {
		return err
	}
	if outgoing {
		e.Log.Info("pushing", "repository", r.Name, "url", r.URL)
		if err := r.Backend.Push(r.Path, all); err != nil {
			return err
		}
	}

	return nil
}
