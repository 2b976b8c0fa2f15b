// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// The ignore machinery is pure file manipulation, so these tests never
// execute the underlying version-control tools.

func newTestRunner() *Runner {
	return NewRunner(log.New(io.Discard))
}

func TestGitIgnoreEdits(t *testing.T) {
	t.Parallel()

	g := NewGit(newTestRunner())
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".git", "info"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := g.WriteIgnores(dir); err != nil {
		t.Fatalf("WriteIgnores failed: %v", err)
	}
	lines := readLines(filepath.Join(dir, ".git", "info", "exclude"))
	if !slices.Equal(lines, DefaultIgnores) {
		t.Errorf("exclude file = %v, want the default ignore list", lines)
	}

	if err := g.Ignore(dir, "libfoo/"); err != nil {
		t.Fatalf("Ignore failed: %v", err)
	}
	// Appending the same entry twice keeps a single line.
	if err := g.Ignore(dir, "libfoo/"); err != nil {
		t.Fatalf("Ignore failed: %v", err)
	}

	lines = readLines(filepath.Join(dir, ".git", "info", "exclude"))
	count := 0
	for _, l := range lines {
		if l == "libfoo/" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("libfoo/ appears %d times, want 1", count)
	}

	if err := g.Unignore(dir, "libfoo/"); err != nil {
		t.Fatalf("Unignore failed: %v", err)
	}
	if slices.Contains(readLines(filepath.Join(dir, ".git", "info", "exclude")), "libfoo/") {
		t.Error("Unignore left the entry in place")
	}

	// Removing an absent entry is not an error.
	if err := g.Unignore(dir, "never-added/"); err != nil {
		t.Errorf("Unignore of an absent entry failed: %v", err)
	}
}

func TestMercurialIgnoreHook(t *testing.T) {
	t.Parallel()

	h := NewMercurial(newTestRunner())
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".hg"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := h.WriteIgnores(dir); err != nil {
		t.Fatalf("WriteIgnores failed: %v", err)
	}

	// The hgignore file carries the glob syntax header plus the defaults.
	lines := readLines(filepath.Join(dir, ".hg", "hgignore"))
	if len(lines) == 0 || lines[0] != "syntax: glob" {
		t.Fatalf("hgignore should start with the glob syntax line, got %v", lines)
	}
	if !slices.Equal(lines[1:], DefaultIgnores) {
		t.Errorf("hgignore tail = %v, want the default ignore list", lines[1:])
	}

	// The activation hook lands in hgrc exactly once, even across repeated
	// ignore operations.
	if err := h.Ignore(dir, "libfoo/"); err != nil {
		t.Fatalf("Ignore failed: %v", err)
	}
	if err := h.Ignore(dir, "libbar/"); err != nil {
		t.Fatalf("Ignore failed: %v", err)
	}

	hgrc, err := os.ReadFile(filepath.Join(dir, ".hg", "hgrc"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(hgrc), "ignore.local"); got != 1 {
		t.Errorf("hgrc carries the ignore hook %d times, want 1:\n%s", got, hgrc)
	}
}

func TestMercurialHgrcDefaultPath(t *testing.T) {
	t.Parallel()

	h := NewMercurial(newTestRunner())
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".hg"), 0o755); err != nil {
		t.Fatal(err)
	}

	hgrc := "[ui]\nusername = dev\n[paths]\nmirror = https://mirror.example.com/libfoo\ndefault = https://example.com/org/libfoo\n"
	if err := os.WriteFile(filepath.Join(dir, ".hg", "hgrc"), []byte(hgrc), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := h.hgrcDefaultPath(dir); got != "https://example.com/org/libfoo" {
		t.Errorf("hgrcDefaultPath = %q, want the default path", got)
	}
}

func TestRegistryDetect(t *testing.T) {
	t.Parallel()

	run := newTestRunner()
	reg := NewRegistry(run)

	t.Run("single marker", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
			t.Fatal(err)
		}

		b, err := reg.Detect(dir)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if b == nil || b.Name() != "git" {
			t.Errorf("Detect = %v, want the git backend", b)
		}
	})

	t.Run("no marker", func(t *testing.T) {
		t.Parallel()

		b, err := reg.Detect(t.TempDir())
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if b != nil {
			t.Errorf("Detect = %v, want nil for an unmanaged directory", b)
		}
	})

	t.Run("ambiguous markers", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.MkdirAll(filepath.Join(dir, ".hg"), 0o755); err != nil {
			t.Fatal(err)
		}

		if _, err := reg.Detect(dir); err == nil {
			t.Error("Detect should refuse a directory with two markers")
		}
	})
}

func TestOutgoingPolicyAsymmetry(t *testing.T) {
	t.Parallel()

	run := newTestRunner()
	git := NewGit(run)
	hg := NewMercurial(run)

	// With no remote to compare against, git treats local history as
	// unpublished while mercurial treats it as published.
	if !git.OutgoingWhenNoRemote() {
		t.Error("git should report outgoing when there is no remote")
	}
	if hg.OutgoingWhenNoRemote() {
		t.Error("mercurial should not report outgoing when there is no remote")
	}
}
