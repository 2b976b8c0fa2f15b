// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arbor-cli/internal/repo"
	"arbor-cli/internal/scm"
)

func writeRef(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name+repo.RefExt), []byte(content+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateRemovesObsoleteLibraries(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("d", 40)
	stub := &stubBackend{remote: "https://example.com/org/libfoo", rev: hash}
	e := newTestEngine(stub)

	root := t.TempDir()
	mkRepoDir(t, root)
	mkRepoDir(t, filepath.Join(root, "libfoo"))
	writeRef(t, root, "libfoo", "https://example.com/org/libfoo/#"+hash)

	// The checkout drops the reference file, leaving the working
	// directory behind as an obsolete library.
	stub.updateFn = func(dir string, _ scm.UpdateOptions) error {
		if dir == root {
			return os.Remove(filepath.Join(root, "libfoo"+repo.RefExt))
		}
		return nil
	}

	if err := e.Update(root, "", UpdateOptions{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "libfoo")); !os.IsNotExist(err) {
		t.Error("a clean remote-backed library without a reference should be removed")
	}
}

func TestUpdatePreservesLocalOnlyLibraries(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("e", 40)

	setup := func(t *testing.T) (*Engine, string) {
		t.Helper()

		root := t.TempDir()
		mkRepoDir(t, root)
		mkRepoDir(t, filepath.Join(root, "libfoo"))
		writeRef(t, root, "libfoo", "https://example.com/org/libfoo/#"+hash)

		stub := &stubBackend{rev: hash}
		stub.remoteFn = func(dir string) (string, error) {
			if dir == root {
				return "https://example.com/org/prog", nil
			}
			return "", nil // the library has never been published
		}
		stub.updateFn = func(dir string, _ scm.UpdateOptions) error {
			if dir == root {
				return os.Remove(filepath.Join(root, "libfoo"+repo.RefExt))
			}
			return nil
		}
		return newTestEngine(stub), root
	}

	t.Run("refuses by default", func(t *testing.T) {
		t.Parallel()

		e, root := setup(t)
		err := e.Update(root, "", UpdateOptions{})

		var violation *GateViolation
		if !errors.As(err, &violation) {
			t.Fatalf("error = %v, want *GateViolation", err)
		}
		if violation.Reason != GateLocalOnly {
			t.Errorf("reason = %v, want %v", violation.Reason, GateLocalOnly)
		}
		if !isDir(filepath.Join(root, "libfoo")) {
			t.Error("the refused library must stay on disk")
		}
	})

	t.Run("ignore-errors demotes the refusal to a warning", func(t *testing.T) {
		t.Parallel()

		e, root := setup(t)
		if err := e.Update(root, "", UpdateOptions{IgnoreErrors: true}); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if !isDir(filepath.Join(root, "libfoo")) {
			t.Error("the skipped library must stay on disk")
		}
	})
}

func TestUpdateDropsUntrackedReferences(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("f", 40)
	stub := &stubBackend{remote: "https://example.com/org/prog", rev: hash}
	stub.untrackedFn = func(string) ([]string, error) {
		return []string{"stray" + repo.RefExt, "notes.txt"}, nil
	}
	e := newTestEngine(stub)

	root := t.TempDir()
	mkRepoDir(t, root)
	writeRef(t, root, "stray", "https://example.com/org/stray/")
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("keep\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := e.Update(root, "", UpdateOptions{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "stray"+repo.RefExt)); !os.IsNotExist(err) {
		t.Error("untracked reference files are leftovers and get deleted")
	}
	if _, err := os.Stat(filepath.Join(root, "notes.txt")); err != nil {
		t.Errorf("untracked non-reference files must survive: %v", err)
	}
}

func TestUpdateReimportsLibrariesWhoseRemoteChanged(t *testing.T) {
	t.Parallel()

	hash := strings.Repeat("1", 40)
	refURL := "https://example.com/org/libfoo"

	root := t.TempDir()
	mkRepoDir(t, root)
	mkRepoDir(t, filepath.Join(root, "libfoo"))
	writeRef(t, root, "libfoo", refURL+"/#"+hash)

	var clonedURL, clonedRev string
	stub := &stubBackend{rev: hash}
	stub.remoteFn = func(dir string) (string, error) {
		switch {
		case dir == root:
			return "https://example.com/org/prog", nil
		case clonedURL != "":
			return clonedURL, nil
		default:
			// The live checkout points somewhere else than its reference.
			return "https://example.com/elsewhere/libfoo", nil
		}
	}
	stub.cloneFn = func(url, dir string, opt scm.CloneOptions) error {
		clonedURL, clonedRev = url, opt.Revision
		return os.MkdirAll(filepath.Join(dir, ".stub"), 0o755)
	}
	e := newTestEngine(stub)

	if err := e.Update(root, "", UpdateOptions{}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if clonedURL != refURL {
		t.Errorf("re-imported from %q, want the referenced URL %q", clonedURL, refURL)
	}
	if clonedRev != hash {
		t.Errorf("re-imported at revision %q, want the pinned %q", clonedRev, hash)
	}
	if !isDir(filepath.Join(root, "libfoo", ".stub")) {
		t.Error("the library must be materialized again after removal")
	}
}
