// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"os"
	"path/filepath"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/repo"
	"arbor-cli/internal/scm"
)

// FetchOptions carries the flags propagated into clone operations.
type FetchOptions struct {
	// Depth limits fetched history when the backend supports it; zero
	// fetches all revisions.
	Depth int
	// Protocol rewrites remote URLs to a transport; empty infers from the
	// URL.
	Protocol string
}

// Deploy materializes the tree from references at path: missing libraries
// are imported at their referenced URL and revision, present ones are
// updated to their pinned revision.
func (e *Engine) Deploy(path string, opt FetchOptions) error {
	r, err := repo.FromDir(e.Reg, path)
	if err != nil {
		return err
	}

	if err := r.Backend.WriteIgnores(r.Path); err != nil {
		return issue.WrapWithOperation(err, "write ignore file")
	}

	for _, lib := range r.Children {
		if isDir(lib.Path) {
			if err := lib.Check(); err != nil {
				return e.staleReference(err)
			}
			if err := e.update(lib.Path, lib.Hash, UpdateOptions{FetchOptions: opt}, false); err != nil {
				return err
			}
			continue
		}

		if err := e.importRepo(lib.FullURL(), lib.Path, opt, false); err != nil {
			return err
		}
		_ = r.Backend.Ignore(r.Path, relTo(r.Path, lib.Path)) //nolint:errcheck // best-effort
	}

	if e.PostDeploy != nil {
		prog := repo.FindProgram(e.Reg, path)
		return e.PostDeploy(prog)
	}
	return nil
}

// Import clones a program and deploys its dependency tree. Top-level
// imports refuse to nest inside an existing program.
func (e *Engine) Import(loc, path string, opt FetchOptions) error {
	return e.importRepo(loc, path, opt, true)
}

func (e *Engine) importRepo(loc, path string, opt FetchOptions, top bool) error {
	lib, err := repo.FromLocator(e.Reg, loc, path)
	if err != nil {
		return err
	}

	if top && repo.PathKind(e.Reg, filepath.Dir(lib.Path)) != "directory" {
		return issue.NewErrorContext().
			WithOperation("import program").
			WithResource(lib.Path).
			WithSuggestion("Change the working directory to a location outside of any program").
			WithSuggestion("Use 'arbor add' to import the URL as a library instead").
			BuildError()
	}

	if entries, err := os.ReadDir(lib.Path); err == nil && len(entries) > 0 {
		return issue.NewErrorContext().
			WithOperation("import repository").
			WithResource(lib.Path).
			WithSuggestion("Ensure the destination folder is empty").
			BuildError()
	}

	what := "library"
	if top {
		what = "program"
	}
	e.Log.Info("importing "+what, "path", e.display(lib.Path), "url", lib.URL, "revision", repo.DescribeRevision(lib.Hash))

	// Backends whose URL grammar owns the locator are attempted first; a
	// failed attempt is cleaned up before the next backend tries.
	var lastErr error
	for _, b := range e.Reg.SortedByOwnership(loc) {
		lastErr = b.Clone(lib.URL, lib.Path, scm.CloneOptions{
			Revision: lib.Hash,
			Depth:    opt.Depth,
			Protocol: opt.Protocol,
		})
		if lastErr == nil {
			break
		}
		e.Log.Debug("clone attempt failed", "backend", b.Name(), "err", lastErr)
		if isDir(lib.Path) {
			_ = repo.RemoveTree(lib.Path) //nolint:errcheck // best-effort cleanup
		}
	}
	if lastErr != nil {
		return issue.NewErrorContext().
			WithOperation("clone repository").
			WithResource(loc).
			WithSuggestion("Verify the URL and revision are correct").
			WithSuggestion("Verify the backend tool (git or hg) is installed and on PATH").
			Wrap(lastErr).
			BuildError()
	}

	if err := lib.Sync(); err != nil {
		return err
	}

	return e.Deploy(lib.Path, opt)
}

// Add imports one library under the repository at parentPath, writes its
// reference file, and stages the reference for commit.
func (e *Engine) Add(parentPath, loc, path string, opt FetchOptions) error {
	r, err := repo.FromDir(e.Reg, parentPath)
	if err != nil {
		return err
	}

	lib, err := repo.FromLocator(e.Reg, loc, e.childDest(r.Path, loc, path))
	if err != nil {
		return err
	}

	if err := e.importRepo(lib.FullURL(), lib.Path, opt, false); err != nil {
		return err
	}

	rel := relTo(r.Path, lib.Path)
	_ = r.Backend.Ignore(r.Path, rel) //nolint:errcheck // best-effort

	if err := lib.Sync(); err != nil {
		return err
	}
	if _, err := lib.WriteReference(); err != nil {
		return issue.WrapWithOperation(err, "write library reference")
	}
	_ = r.Backend.Add(r.Path, filepath.ToSlash(rel)+repo.RefExt) //nolint:errcheck // best-effort

	return nil
}

// Remove deletes one library from the repository at parentPath: stages the
// reference removal, removes the working tree, and drops the ignore entry.
func (e *Engine) Remove(parentPath, path string) error {
	r, err := repo.FromDir(e.Reg, parentPath)
	if err != nil {
		return err
	}

	lib, err := repo.FromDir(e.Reg, filepath.Join(r.Path, path))
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("remove library").
			WithResource(path).
			WithSuggestion("Verify the library path names a repository").
			Wrap(err).
			BuildError()
	}

	rel := relTo(r.Path, lib.Path)
	e.Log.Info("removing library", "library", e.display(lib.Path))

	_ = r.Backend.Remove(r.Path, filepath.ToSlash(rel)+repo.RefExt) //nolint:errcheck // best-effort
	if err := repo.RemoveTree(lib.Path); err != nil {
		return err
	}
	return r.Backend.Unignore(r.Path, rel)
}

// childDest resolves the destination of a new library: an explicit path is
// anchored under the parent, otherwise the locator's name is used.
func (e *Engine) childDest(parentPath, loc, path string) string {
	if path == "" {
		ref, err := repo.FromLocator(e.Reg, loc, "")
		if err != nil {
			return parentPath
		}
		return filepath.Join(parentPath, ref.Name)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(parentPath, path)
}
