// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"arbor-cli/internal/scm"

	"github.com/charmbracelet/log"
)

// newTestRegistry builds a registry whose backends are never executed; the
// tests below exercise filesystem behavior only.
func newTestRegistry() *scm.Registry {
	return scm.NewRegistry(scm.NewRunner(log.New(io.Discard)))
}

func TestFromLocator(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	t.Run("url locator derives the destination from the name", func(t *testing.T) {
		t.Parallel()

		r, err := FromLocator(reg, "https://example.com/org/libfoo#1a2b3c4d5e6f", "")
		if err != nil {
			t.Fatalf("FromLocator failed: %v", err)
		}
		if r.Name != "libfoo" {
			t.Errorf("name = %q, want libfoo", r.Name)
		}
		if r.URL != "https://example.com/org/libfoo" {
			t.Errorf("url = %q", r.URL)
		}
		if r.Hash != "1a2b3c4d5e6f" {
			t.Errorf("hash = %q", r.Hash)
		}
		if r.IsLocal {
			t.Error("url locator should not be local")
		}
	})

	t.Run("explicit path overrides the derived destination", func(t *testing.T) {
		t.Parallel()

		dest := filepath.Join(t.TempDir(), "renamed")
		r, err := FromLocator(reg, "https://example.com/org/libfoo", dest)
		if err != nil {
			t.Fatalf("FromLocator failed: %v", err)
		}
		if r.Path != dest {
			t.Errorf("path = %q, want %q", r.Path, dest)
		}
		if r.Name != "renamed" {
			t.Errorf("name = %q, want renamed", r.Name)
		}
	})

	t.Run("local locator", func(t *testing.T) {
		t.Parallel()

		r, err := FromLocator(reg, "libs/libfoo", "")
		if err != nil {
			t.Fatalf("FromLocator failed: %v", err)
		}
		if !r.IsLocal {
			t.Error("bare path locator should be local")
		}
		if r.Name != "libfoo" {
			t.Errorf("name = %q, want libfoo", r.Name)
		}
	})
}

func TestFromReference(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		refFile := filepath.Join(dir, "libfoo"+RefExt)
		if err := os.WriteFile(refFile, []byte("https://example.com/org/libfoo/#1a2b3c4d5e6f\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		r, err := FromReference(reg, refFile)
		if err != nil {
			t.Fatalf("FromReference failed: %v", err)
		}
		if r.URL != "https://example.com/org/libfoo" {
			t.Errorf("url = %q", r.URL)
		}
		if r.Hash != "1a2b3c4d5e6f" {
			t.Errorf("hash = %q", r.Hash)
		}
		if r.Path != filepath.Join(dir, "libfoo") {
			t.Errorf("path = %q", r.Path)
		}
	})

	t.Run("static archives are rejected", func(t *testing.T) {
		t.Parallel()

		refFile := filepath.Join(t.TempDir(), "libfoo"+RefExt)
		if err := os.WriteFile(refFile, []byte("!<arch>\nbinary payload"), 0o644); err != nil {
			t.Fatal(err)
		}

		_, err := FromReference(reg, refFile)
		var archive *StaticArchiveError
		if !errors.As(err, &archive) {
			t.Fatalf("error = %v, want *StaticArchiveError", err)
		}
	})
}

func TestFullURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		hash string
		want string
	}{
		{name: "pinned", url: "https://example.com/org/libfoo", hash: "1a2b3c", want: "https://example.com/org/libfoo/#1a2b3c"},
		{name: "unpinned omits the hash segment", url: "https://example.com/org/libfoo", want: "https://example.com/org/libfoo/"},
		{name: "no url renders empty", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &Repo{URL: tt.url, Hash: tt.hash}
			if got := r.FullURL(); got != tt.want {
				t.Errorf("FullURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRevisionsEqual(t *testing.T) {
	t.Parallel()

	full := "0123456789abcdef0123456789abcdef01234567"

	if !RevisionsEqual(full, full) {
		t.Error("identical revisions should compare equal")
	}
	if !RevisionsEqual(full[:12], full) {
		t.Error("an abbreviated hash should equal the full hash it prefixes")
	}
	if !RevisionsEqual(full, full[:12]) {
		t.Error("prefix matching should be symmetric")
	}
	if RevisionsEqual("", full) {
		t.Error("empty never equals a pinned revision")
	}
	if RevisionsEqual("deadbeef", full) {
		t.Error("non-prefix hashes should not compare equal")
	}
}

func TestDescribeRevision(t *testing.T) {
	t.Parallel()

	if got := DescribeRevision(""); got != "latest revision in the current branch" {
		t.Errorf("DescribeRevision(\"\") = %q", got)
	}
	if got := DescribeRevision("0123456789abcdef"); got != "rev #0123456789abcdef" {
		t.Errorf("hex revision = %q", got)
	}
	if got := DescribeRevision("develop"); got != "branch develop" {
		t.Errorf("branch name = %q", got)
	}
}

func TestWriteReference(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	dir := t.TempDir()

	full := "0123456789abcdef0123456789abcdef01234567"
	r := &Repo{
		reg:  reg,
		Path: filepath.Join(dir, "libfoo"),
		Name: "libfoo",
		URL:  "https://example.com/org/libfoo",
		Hash: full,
	}

	wrote, err := r.WriteReference()
	if err != nil {
		t.Fatalf("WriteReference failed: %v", err)
	}
	if !wrote {
		t.Fatal("first write should report a change")
	}

	data, err := os.ReadFile(r.RefFile())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "https://example.com/org/libfoo/#"+full {
		t.Errorf("reference content = %q", got)
	}

	// Unchanged state never rewrites.
	wrote, err = r.WriteReference()
	if err != nil {
		t.Fatalf("WriteReference failed: %v", err)
	}
	if wrote {
		t.Error("identical state should not rewrite the reference")
	}

	// An abbreviated stored hash equals the full live hash.
	if err := os.WriteFile(r.RefFile(), []byte("https://example.com/org/libfoo/#"+full[:12]+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	wrote, err = r.WriteReference()
	if err != nil {
		t.Fatalf("WriteReference failed: %v", err)
	}
	if wrote {
		t.Error("abbreviated stored hash should not trigger a rewrite")
	}

	// A revision change does.
	r.Hash = strings.Repeat("f", 40)
	wrote, err = r.WriteReference()
	if err != nil {
		t.Fatalf("WriteReference failed: %v", err)
	}
	if !wrote {
		t.Error("revision change should rewrite the reference")
	}
}

func TestDiscoverChildren(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	dir := t.TempDir()

	// One referenced library, one reference without a directory, one nested
	// file that must not be picked up because its parent is itself a child.
	mustWrite(t, filepath.Join(dir, "liba"+RefExt), "https://example.com/org/liba/#1a2b3c4d5e6f\n")
	mustWrite(t, filepath.Join(dir, "libb"+RefExt), "https://example.com/org/libb/\n")
	mustMkdir(t, filepath.Join(dir, "liba", ".git"))
	mustWrite(t, filepath.Join(dir, "liba", "nested"+RefExt), "https://example.com/org/nested/\n")
	mustMkdir(t, filepath.Join(dir, ".hidden"))
	mustWrite(t, filepath.Join(dir, ".hidden", "ghost"+RefExt), "https://example.com/org/ghost/\n")

	r := &Repo{reg: reg, Path: dir, Name: filepath.Base(dir)}
	children, err := r.DiscoverChildren()
	if err != nil {
		t.Fatalf("DiscoverChildren failed: %v", err)
	}

	var names []string
	for _, c := range children {
		names = append(names, c.Name)
	}
	if len(names) != 2 || names[0] != "liba" || names[1] != "libb" {
		t.Errorf("children = %v, want [liba libb]", names)
	}
}

func TestUnreferencedRepoDirs(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	dir := t.TempDir()

	// libref has a reference, liborphan does not; the nested repository
	// inside liborphan must not be reported because walks stop at
	// repository boundaries.
	mustMkdir(t, filepath.Join(dir, "libref", ".git"))
	mustWrite(t, filepath.Join(dir, "libref"+RefExt), "https://example.com/org/libref/\n")
	mustMkdir(t, filepath.Join(dir, "liborphan", ".hg"))
	mustMkdir(t, filepath.Join(dir, "liborphan", "inner", ".git"))

	r := &Repo{reg: reg, Path: dir, Name: filepath.Base(dir)}
	orphans, err := r.UnreferencedRepoDirs()
	if err != nil {
		t.Fatalf("UnreferencedRepoDirs failed: %v", err)
	}

	if len(orphans) != 1 || filepath.Base(orphans[0]) != "liborphan" {
		t.Errorf("orphans = %v, want [liborphan]", orphans)
	}
}

func TestFindRoot(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	dir := t.TempDir()

	mustMkdir(t, filepath.Join(dir, "prog", ".git"))
	mustMkdir(t, filepath.Join(dir, "prog", "src", "deep"))

	root, ok := FindRoot(reg, filepath.Join(dir, "prog", "src", "deep"))
	if !ok {
		t.Fatal("FindRoot should find the enclosing repository")
	}
	if root != filepath.Join(dir, "prog") {
		t.Errorf("root = %q, want %q", root, filepath.Join(dir, "prog"))
	}

	if _, ok := FindRoot(reg, dir); ok {
		t.Error("FindRoot outside any repository should report none")
	}
}

func TestPathKind(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry()
	dir := t.TempDir()

	mustMkdir(t, filepath.Join(dir, "prog", ".git"))
	mustMkdir(t, filepath.Join(dir, "prog", "lib", ".git"))

	if got := PathKind(reg, dir); got != "directory" {
		t.Errorf("plain directory kind = %q", got)
	}
	if got := PathKind(reg, filepath.Join(dir, "prog")); got != "program" {
		t.Errorf("top-level repository kind = %q", got)
	}
	if got := PathKind(reg, filepath.Join(dir, "prog", "lib")); got != "library" {
		t.Errorf("nested repository kind = %q", got)
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatal(err)
	}
}
