// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"arbor-cli/internal/locator"
	"arbor-cli/internal/scm"
)

// RefExt is the extension of library reference files. A library checked out
// at <parent>/<name> is declared by the sibling file <parent>/<name>.lib.
const RefExt = ".lib"

type (
	// Repo is the in-memory model of one working directory bound to
	// version control.
	Repo struct {
		// Path is the absolute filesystem location; Name its basename.
		Path string
		Name string

		// URL is the canonical remote locator, empty for repositories
		// that have never been associated with a remote.
		URL string

		// Hash is the pinned revision, empty meaning the latest revision
		// on the current branch.
		Hash string

		// IsLocal marks repositories constructed from a bare local path
		// reference, or with no remote configured.
		IsLocal bool

		// Backend is nil until Sync detects exactly one marker directory.
		Backend scm.Backend

		// Children are the library references discovered under Path.
		// Recomputed on demand, never cached across mutating operations.
		Children []*Repo

		reg *scm.Registry
	}

	// NotARepositoryError reports a directory carrying no backend marker.
	NotARepositoryError struct {
		Path string
	}

	// StaticArchiveError reports a reference file that is actually a
	// binary static-library archive using the same extension.
	StaticArchiveError struct {
		RefFile string
	}
)

func (e *NotARepositoryError) Error() string {
	return fmt.Sprintf("%q is not a supported repository", e.Path)
}

func (e *StaticArchiveError) Error() string {
	return fmt.Sprintf("%q is a static library archive, not a library reference", e.RefFile)
}

// FromLocator constructs a Repo from a locator string. path overrides the
// destination derived from the locator; relative paths are resolved against
// the current directory, which only happens at CLI entry points.
func FromLocator(reg *scm.Registry, loc, path string) (*Repo, error) {
	ref, err := locator.Parse(loc)
	if err != nil {
		return nil, err
	}

	r := &Repo{reg: reg, Hash: ref.Rev}
	switch ref.Kind {
	case locator.KindLocal:
		r.IsLocal = true
		r.URL = ref.URL
		if path == "" {
			path = ref.URL
		}
	case locator.KindURL:
		r.URL = ref.URL
		if path == "" {
			path = ref.Name
		}
	}

	if r.Path, err = filepath.Abs(path); err != nil {
		return nil, err
	}
	r.Name = filepath.Base(r.Path)
	return r, nil
}

// FromReference constructs a Repo by reading a library reference file. The
// library's working directory is the reference path without the extension.
func FromReference(reg *scm.Registry, refFile string) (*Repo, error) {
	data, err := os.ReadFile(refFile)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(string(data), "!<arch>") {
		return nil, &StaticArchiveError{RefFile: refFile}
	}

	return FromLocator(reg, strings.TrimSpace(string(data)), strings.TrimSuffix(refFile, RefExt))
}

// FromDir constructs a Repo by introspecting an existing directory,
// populating URL, revision, backend and children from live VCS state.
func FromDir(reg *scm.Registry, path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	r := &Repo{reg: reg, Path: abs, Name: filepath.Base(abs)}
	if err := r.Sync(); err != nil {
		return nil, err
	}
	if r.Backend == nil {
		return nil, &NotARepositoryError{Path: abs}
	}
	return r, nil
}

// FindRoot walks upward from start until it finds a directory carrying a
// backend marker.
func FindRoot(reg *scm.Registry, start string) (string, bool) {
	path, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}

	for {
		if reg.IsRepoDir(path) {
			return path, true
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", false
		}
		path = parent
	}
}

// PathKind classifies a directory by how many repository roots enclose it:
// "directory" (none), "program" (one), or "library" (nested).
func PathKind(reg *scm.Registry, path string) string {
	depth := 0
	for {
		root, ok := FindRoot(reg, path)
		if !ok {
			break
		}
		depth++
		parent := filepath.Dir(root)
		if parent == root {
			break
		}
		path = parent
	}

	switch depth {
	case 0:
		return "directory"
	case 1:
		return "program"
	default:
		return "library"
	}
}

// RefFile returns the path of this repository's own reference file, sibling
// to its working directory.
func (r *Repo) RefFile() string {
	return r.Path + RefExt
}

// FullURL renders the reference-file form of the repository's pinned state:
// `<url>/#<hash>`, with the hash segment omitted when unpinned.
func (r *Repo) FullURL() string {
	if r.URL == "" {
		return ""
	}
	s := strings.TrimRight(r.URL, "/") + "/"
	if r.Hash != "" {
		s += "#" + r.Hash
	}
	return s
}

// DescribeRevision renders a revision for log output.
func DescribeRevision(hash string) string {
	switch {
	case hash == "":
		return "latest revision in the current branch"
	case isHexRevision(hash):
		return "rev #" + hash
	default:
		return "branch " + hash
	}
}

func isHexRevision(hash string) bool {
	if len(hash) < 12 || len(hash) > 40 {
		return false
	}
	for _, c := range hash {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// RevisionsEqual compares two revisions, treating an abbreviated hash as
// equal to any full hash it prefixes.
func RevisionsEqual(a, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	return strings.HasPrefix(b, a)
}

// Sync refreshes the repository's live state from disk: backend detection,
// remote URL, current revision and discovered children. Backend process
// failures are tolerated (fields stay empty); structural problems such as
// ambiguous markers or corrupt reference files are returned.
func (r *Repo) Sync() error {
	r.URL = ""
	r.Hash = ""

	if !isDir(r.Path) {
		return nil
	}

	backend, err := r.reg.Detect(r.Path)
	if err != nil {
		return err
	}
	r.Backend = backend
	if backend == nil {
		return nil
	}

	if url, err := backend.RemoteURL(r.Path); err == nil && url != "" {
		r.URL = url
	} else {
		// No remote configured: the repository is local-only. Its "URL"
		// becomes its path relative to the enclosing repository, so that
		// reference files for unpublished libraries stay meaningful.
		r.IsLocal = true
		if parent, ok := FindRoot(r.reg, filepath.Dir(r.Path)); ok {
			if rel, relErr := filepath.Rel(parent, r.Path); relErr == nil {
				r.URL = filepath.ToSlash(rel)
			}
		}
		if r.URL == "" {
			r.URL = r.Name
		}
	}

	if hash, err := backend.CurrentRevision(r.Path); err == nil {
		r.Hash = hash
	}

	children, err := r.DiscoverChildren()
	if err != nil {
		return err
	}
	r.Children = children
	return nil
}

// DiscoverChildren walks the working tree and returns one Repo per library
// reference file found. The walk is an explicit worklist over directory
// entries: hidden entries are skipped, and a subdirectory is never entered
// once it has been classified as a library root in its own directory.
func (r *Repo) DiscoverChildren() ([]*Repo, error) {
	var children []*Repo

	worklist := []string{r.Path}
	for len(worklist) > 0 {
		dir := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		classified := map[string]bool{}
		var subdirs []string
		for _, e := range entries {
			name := e.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			if e.IsDir() {
				subdirs = append(subdirs, name)
				continue
			}
			if strings.HasSuffix(name, RefExt) {
				child, err := FromReference(r.reg, filepath.Join(dir, name))
				if err != nil {
					return nil, err
				}
				children = append(children, child)
				classified[strings.TrimSuffix(name, RefExt)] = true
			}
		}

		for _, name := range subdirs {
			if !classified[name] {
				worklist = append(worklist, filepath.Join(dir, name))
			}
		}
	}

	return children, nil
}

// UnreferencedRepoDirs walks the working tree and returns every directory
// that is itself a repository but has no sibling reference file. Classified
// directories (repositories, referenced or not) are not descended into.
func (r *Repo) UnreferencedRepoDirs() ([]string, error) {
	var missing []string

	worklist := []string{r.Path}
	for len(worklist) > 0 {
		dir := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			name := e.Name()
			if !e.IsDir() || strings.HasPrefix(name, ".") {
				continue
			}

			sub := filepath.Join(dir, name)
			if !r.reg.IsRepoDir(sub) {
				worklist = append(worklist, sub)
				continue
			}
			if _, err := os.Stat(sub + RefExt); err != nil {
				missing = append(missing, sub)
			}
		}
	}

	return missing, nil
}

// WriteReference persists the repository's canonical URL and revision to
// its reference file. The file is rewritten only when the stored reference
// differs: URLs are compared in canonical https form and abbreviated hashes
// compare equal to the full hashes they prefix. Reports whether a write
// happened.
func (r *Repo) WriteReference() (bool, error) {
	if stored, err := FromReference(r.reg, r.RefFile()); err == nil {
		sameURL := locator.Canonical(stored.URL, locator.ProtocolHTTPS) == locator.Canonical(r.URL, locator.ProtocolHTTPS)
		if sameURL && (stored.Hash == r.Hash || RevisionsEqual(stored.Hash, r.Hash)) {
			return false, nil
		}
	}

	return true, os.WriteFile(r.RefFile(), []byte(r.FullURL()+"\n"), 0o644)
}

// RemoveUntrackedRefs deletes reference files that the backend reports as
// untracked, leftovers from before a checkout switched revisions.
func (r *Repo) RemoveUntrackedRefs() error {
	if r.Backend == nil {
		return &NotARepositoryError{Path: r.Path}
	}

	untracked, err := r.Backend.Untracked(r.Path)
	if err != nil {
		return err
	}

	for _, file := range untracked {
		if !strings.HasSuffix(file, RefExt) {
			continue
		}
		path := filepath.Join(r.Path, file)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
