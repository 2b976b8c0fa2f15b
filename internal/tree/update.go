// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"errors"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/locator"
	"arbor-cli/internal/repo"
	"arbor-cli/internal/scm"
)

// UpdateOptions controls the update traversal.
type UpdateOptions struct {
	FetchOptions

	// Clean discards local modifications before checking out. Also
	// satisfies the gate's dirty-tree condition.
	Clean bool
	// Force bypasses the gate's local-only and outgoing conditions.
	Force bool
	// IgnoreErrors demotes gate refusals to warnings, leaving the
	// offending library in place.
	IgnoreErrors bool
}

// Update advances the tree at path to revision (or the latest revision when
// empty), reconciling libraries added, dropped or re-homed by the new
// revision.
func (e *Engine) Update(path, revision string, opt UpdateOptions) error {
	// Reconciling a tree whose references are stale would mis-detect
	// obsolete libraries, so a clean update synchronizes first.
	if opt.Clean {
		if err := e.Sync(path, SyncOptions{Recursive: true}); err != nil {
			return err
		}
	}
	return e.update(path, revision, opt, true)
}

func (e *Engine) update(path, revision string, opt UpdateOptions, top bool) error {
	r, err := repo.FromDir(e.Reg, path)
	if err != nil {
		return err
	}

	if top && revision == "" {
		detached, err := r.Backend.IsDetached(r.Path)
		if err != nil {
			return err
		}
		if detached {
			return issue.NewErrorContext().
				WithOperation("update repository").
				WithResource(r.Path).
				WithSuggestion("Check out a branch first, e.g. '" + r.Backend.Name() + " checkout <branch>'").
				Wrap(&DetachedHeadError{Path: r.Path, Backend: r.Backend.Name()}).
				BuildError()
		}
	}

	if r.IsLocal && r.Hash == "" {
		// Nothing to fetch and no pinned revision to move to.
		e.Log.Info("skipping unpublished empty repository", "path", e.display(r.Path))
	} else {
		e.Log.Info("updating", "path", e.display(r.Path), "to", repo.DescribeRevision(revision))
		if err := r.Backend.Update(r.Path, scm.UpdateOptions{
			Revision: revision,
			Clean:    opt.Clean,
			Fetch:    !r.IsLocal,
		}); err != nil {
			return err
		}
		if err := r.RemoveUntrackedRefs(); err != nil {
			return err
		}
	}

	// Obsolescence pass: the checkout may have dropped reference files;
	// libraries that lost theirs are removed, gated by the safety check.
	// r.Children still reflects the pre-checkout references here.
	for _, lib := range r.Children {
		if isFile(lib.RefFile()) || !isDir(lib.Path) {
			continue
		}
		if err := e.removeGated(r, lib.Path, opt, "obsolete"); err != nil {
			return err
		}
	}

	// Recompute children from the post-checkout disk state.
	if err := r.Sync(); err != nil {
		return err
	}

	// Drift pass: a library whose live remote no longer matches its
	// reference is removed so it can be re-imported from the new URL.
	for _, lib := range r.Children {
		if !isDir(lib.Path) || !e.Reg.IsRepoDir(lib.Path) {
			continue
		}
		live, err := repo.FromDir(e.Reg, lib.Path)
		if err != nil {
			return err
		}
		if sameRemote(lib.URL, live.URL) {
			continue
		}
		if err := e.removeGated(r, lib.Path, opt, "changed URL"); err != nil {
			return err
		}
	}

	// Materialize pass: import what is now missing, recurse into what
	// remains.
	for _, lib := range r.Children {
		if !isDir(lib.Path) {
			if err := e.importRepo(lib.FullURL(), lib.Path, opt.FetchOptions, false); err != nil {
				return err
			}
			_ = r.Backend.Ignore(r.Path, relTo(r.Path, lib.Path)) //nolint:errcheck // best-effort
			continue
		}
		if err := e.update(lib.Path, lib.Hash, opt, false); err != nil {
			return err
		}
	}

	return nil
}

// removeGated attempts a destructive library removal behind the safety
// gate. Gate refusals become warnings under IgnoreErrors, otherwise they
// abort the traversal with corrective suggestions attached.
func (e *Engine) removeGated(parent *repo.Repo, libPath string, opt UpdateOptions, why string) error {
	lib, err := repo.FromDir(e.Reg, libPath)
	if err != nil {
		return err
	}

	if gateErr := e.canUpdate(lib, opt.Clean, opt.Force); gateErr != nil {
		var violation *GateViolation
		if !errors.As(gateErr, &violation) {
			return gateErr
		}
		if opt.IgnoreErrors {
			e.Log.Warn(violation.Error())
			return nil
		}

		ctx := issue.NewErrorContext().
			WithOperation("remove library (" + why + ")").
			WithResource(libPath).
			Wrap(violation)
		for _, s := range violation.Suggestions() {
			ctx = ctx.WithSuggestion(s)
		}
		return ctx.BuildError()
	}

	e.Log.Info("removing library ("+why+")", "library", e.display(libPath))
	if err := repo.RemoveTree(libPath); err != nil {
		return err
	}
	return parent.Backend.Unignore(parent.Path, relTo(parent.Path, libPath))
}

// sameRemote compares two remote URLs in their canonical https form.
func sameRemote(a, b string) bool {
	return locator.Canonical(a, locator.ProtocolHTTPS) == locator.Canonical(b, locator.ProtocolHTTPS)
}
