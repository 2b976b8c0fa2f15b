// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultIgnores is the standard ignore-pattern list written to every
// repository's backend exclude file, in addition to one line per ignored
// library path.
var DefaultIgnores = []string{
	// Version control folders
	".hg",
	".git",
	".svn",
	".CVS",
	".cvs",

	// Version control fallout
	"*.orig",

	// Tool output
	".build",
	".export",

	// Editor and IDE project files
	"*.uvproj",
	"*.uvopt",
	"*.project",
	"*.cproject",
	"*.launch",
	"*.ewp",
	"*.eww",
	"Makefile",
	"Debug",

	// Settings files
	".arbor",
	"*.settings",

	"# library ignores",
}

type (
	// CloneOptions carries optional clone parameters.
	CloneOptions struct {
		// Revision is checked out after cloning when non-empty.
		Revision string
		// Depth limits history when the backend supports shallow clones.
		Depth int
		// Protocol selects the transport the remote URL is rewritten to.
		Protocol string
	}

	// UpdateOptions carries optional update/checkout parameters.
	UpdateOptions struct {
		// Revision is the target revision; empty means the latest tip of
		// the current branch.
		Revision string
		// Clean discards local modifications and untracked files first.
		// Irreversible; callers must have gated this already.
		Clean bool
		// Fetch synchronizes from the remote before checking out. False
		// for local-only repositories that have nothing to fetch from.
		Fetch bool
	}

	// Backend is the capability set implemented once per version-control
	// system. Implementations are stateless; every method names the
	// repository's working directory explicitly.
	Backend interface {
		Name() string

		// MarkerDir is the control-metadata directory whose presence
		// selects this backend (".git", ".hg").
		MarkerDir() string

		// OwnsURL reports whether this backend's URL grammar owns the
		// locator. Ownership is mutually exclusive across backends.
		OwnsURL(locator string) bool

		// OutgoingWhenNoRemote is the backend's policy for "no comparison
		// target": what Outgoing reports when there is no remote to
		// compare against.
		OutgoingWhenNoRemote() bool

		Init(path string) error
		Clone(url, dest string, opt CloneOptions) error

		// Add and Remove stage reference-file changes; best-effort for
		// callers. Remove also deletes the file from disk.
		Add(dir, file string) error
		Remove(dir, file string) error

		Commit(dir string) error
		Push(dir string, all bool) error
		Pull(dir string) error
		Update(dir string, opt UpdateOptions) error

		Status(dir string) (string, error)
		Dirty(dir string) (bool, error)
		Untracked(dir string) ([]string, error)
		Outgoing(dir string) (bool, error)
		IsDetached(dir string) (bool, error)

		RemoteURL(dir string) (string, error)
		CurrentRevision(dir string) (string, error)

		// WriteIgnores rewrites the backend exclude file with
		// DefaultIgnores, first ensuring any activation hook the backend
		// requires is in place.
		WriteIgnores(dir string) error
		// Ignore and Unignore idempotently add/remove one exact line in
		// the backend exclude file.
		Ignore(dir, path string) error
		Unignore(dir, path string) error
	}

	// Registry holds the ordered set of known backends.
	Registry struct {
		backends []Backend
	}
)

// NewRegistry builds the default registry: Mercurial, then git.
func NewRegistry(run *Runner) *Registry {
	return &Registry{backends: []Backend{
		NewMercurial(run),
		NewGit(run),
	}}
}

// NewRegistryWith builds a registry from explicit backends. Used by tests
// to substitute stub backends.
func NewRegistryWith(backends ...Backend) *Registry {
	return &Registry{backends: backends}
}

// Backends returns the registered backends in registration order.
func (g *Registry) Backends() []Backend {
	return g.backends
}

// ByName looks a backend up by its registered name.
func (g *Registry) ByName(name string) (Backend, bool) {
	for _, b := range g.backends {
		if b.Name() == name {
			return b, true
		}
	}
	return nil, false
}

// Detect probes path for backend marker directories. It returns nil with no
// error when no marker is present, and an error when more than one is.
func (g *Registry) Detect(path string) (Backend, error) {
	var found Backend
	for _, b := range g.backends {
		if isDir(filepath.Join(path, b.MarkerDir())) {
			if found != nil {
				return nil, fmt.Errorf("both %s and %s control %q", found.Name(), b.Name(), path)
			}
			found = b
		}
	}
	return found, nil
}

// IsRepoDir reports whether path carries any backend's marker directory.
func (g *Registry) IsRepoDir(path string) bool {
	for _, b := range g.backends {
		if isDir(filepath.Join(path, b.MarkerDir())) {
			return true
		}
	}
	return false
}

// SortedByOwnership returns the backends ordered so that ones whose URL
// grammar owns the locator are attempted first.
func (g *Registry) SortedByOwnership(locator string) []Backend {
	sorted := make([]Backend, len(g.backends))
	copy(sorted, g.backends)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OwnsURL(locator) && !sorted[j].OwnsURL(locator)
	})
	return sorted
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
