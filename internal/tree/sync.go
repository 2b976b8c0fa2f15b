// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"path/filepath"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/repo"
)

// SyncOptions controls the sync traversal.
type SyncOptions struct {
	// Recursive repeats the reconciliation inside every discovered child.
	Recursive bool
	// KeepRefs preserves reference files whose directories are missing
	// instead of deleting them.
	KeepRefs bool
}

// Sync reconciles reference files with on-disk reality at path: refreshes
// references for libraries that exist, drops references to libraries that
// are gone, and writes fresh references for nested repositories that have
// none yet.
func (e *Engine) Sync(path string, opt SyncOptions) error {
	if opt.Recursive {
		e.Log.Info("synchronizing dependency references", "path", e.display(path))
	}
	return e.sync(path, opt)
}

func (e *Engine) sync(path string, opt SyncOptions) error {
	r, err := repo.FromDir(e.Reg, path)
	if err != nil {
		return err
	}

	if err := r.Backend.WriteIgnores(r.Path); err != nil {
		return issue.NewErrorContext().
			WithOperation("write ignore file").
			WithResource(r.Path).
			Wrap(err).
			BuildError()
	}

	for _, lib := range r.Children {
		rel := relTo(r.Path, lib.Path)

		if isDir(lib.Path) {
			if err := lib.Check(); err != nil {
				return e.staleReference(err)
			}
			if err := lib.Sync(); err != nil {
				return err
			}
			wrote, err := lib.WriteReference()
			if err != nil {
				return issue.WrapWithOperation(err, "update library reference")
			}
			if wrote {
				e.Log.Info("updating reference", "library", e.display(lib.Path), "ref", lib.FullURL())
			}
			// Best-effort bookkeeping; never aborts the traversal.
			_ = r.Backend.Ignore(r.Path, rel)            //nolint:errcheck
			continue
		}

		if !opt.KeepRefs {
			e.Log.Info("removing stale reference", "library", lib.Name, "ref", lib.FullURL())
			_ = r.Backend.Remove(r.Path, rel+repo.RefExt) //nolint:errcheck // best-effort
			_ = r.Backend.Unignore(r.Path, rel)           //nolint:errcheck // best-effort
		}
	}

	// Discover nested repositories that have no reference file yet and
	// write one for each.
	orphans, err := r.UnreferencedRepoDirs()
	if err != nil {
		return err
	}
	for _, dir := range orphans {
		lib, err := repo.FromDir(e.Reg, dir)
		if err != nil {
			return err
		}
		if _, err := lib.WriteReference(); err != nil {
			return issue.WrapWithOperation(err, "write library reference")
		}
		e.Log.Info("writing new reference", "library", e.display(lib.Path), "ref", lib.FullURL())

		rel := relTo(r.Path, lib.Path)
		_ = r.Backend.Ignore(r.Path, rel)                            //nolint:errcheck // best-effort
		_ = r.Backend.Add(r.Path, filepath.ToSlash(rel)+repo.RefExt) //nolint:errcheck // best-effort
	}

	// Recompute children from the reconciled disk state.
	if err := r.Sync(); err != nil {
		return err
	}

	if opt.Recursive {
		for _, lib := range r.Children {
			if err := lib.Check(); err != nil {
				return e.staleReference(err)
			}
			if err := e.sync(lib.Path, opt); err != nil {
				return err
			}
		}
	}

	return nil
}

// staleReference wraps reference validity errors with corrective hints.
func (e *Engine) staleReference(err error) error {
	return issue.NewErrorContext().
		WithOperation("validate library reference").
		WithSuggestion("Run 'arbor deploy' to import missing libraries").
		WithSuggestion("Remove the conflicting folder manually and run 'arbor sync' again").
		Wrap(err).
		BuildError()
}
