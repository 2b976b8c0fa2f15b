// SPDX-License-Identifier: MPL-2.0

package tree

import (
	"errors"
	"io"
	"testing"

	"arbor-cli/internal/repo"
	"arbor-cli/internal/scm"

	"github.com/charmbracelet/log"
)

// stubBackend satisfies scm.Backend without touching any external tool. The
// function fields, when set, override the corresponding fixed-value method
// so a test can script per-directory behavior.
type stubBackend struct {
	dirty    bool
	outgoing bool
	remote   string
	rev      string

	updateFn    func(dir string, opt scm.UpdateOptions) error
	cloneFn     func(url, dir string, opt scm.CloneOptions) error
	remoteFn    func(dir string) (string, error)
	untrackedFn func(dir string) ([]string, error)
}

func (*stubBackend) Name() string               { return "stub" }
func (*stubBackend) MarkerDir() string          { return ".stub" }
func (*stubBackend) OwnsURL(string) bool        { return false }
func (*stubBackend) OutgoingWhenNoRemote() bool { return false }
func (*stubBackend) Init(string) error          { return nil }

func (s *stubBackend) Clone(url, dir string, opt scm.CloneOptions) error {
	if s.cloneFn != nil {
		return s.cloneFn(url, dir, opt)
	}
	return nil
}

func (*stubBackend) Add(string, string) error    { return nil }
func (*stubBackend) Remove(string, string) error { return nil }
func (*stubBackend) Commit(string) error         { return nil }
func (*stubBackend) Push(string, bool) error     { return nil }
func (*stubBackend) Pull(string) error           { return nil }

func (s *stubBackend) Update(dir string, opt scm.UpdateOptions) error {
	if s.updateFn != nil {
		return s.updateFn(dir, opt)
	}
	return nil
}

func (*stubBackend) Status(string) (string, error) { return "", nil }
func (s *stubBackend) Dirty(string) (bool, error)  { return s.dirty, nil }

func (s *stubBackend) Untracked(dir string) ([]string, error) {
	if s.untrackedFn != nil {
		return s.untrackedFn(dir)
	}
	return nil, nil
}

func (s *stubBackend) Outgoing(string) (bool, error) { return s.outgoing, nil }
func (*stubBackend) IsDetached(string) (bool, error) { return false, nil }

func (s *stubBackend) RemoteURL(dir string) (string, error) {
	if s.remoteFn != nil {
		return s.remoteFn(dir)
	}
	return s.remote, nil
}

func (s *stubBackend) CurrentRevision(string) (string, error) { return s.rev, nil }
func (*stubBackend) WriteIgnores(string) error                { return nil }
func (*stubBackend) Ignore(string, string) error              { return nil }
func (*stubBackend) Unignore(string, string) error            { return nil }

func newTestEngine(b scm.Backend) *Engine {
	return New(scm.NewRegistryWith(b), log.New(io.Discard))
}

func TestCanUpdateGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		local    bool
		url      string
		dirty    bool
		outgoing bool
		clean    bool
		force    bool
		want     GateReason
		allowed  bool
	}{
		{
			name: "clean published library may be removed",
			url:  "https://example.com/org/libfoo", allowed: true,
		},
		{
			name: "local-only library is preserved",
			local: true, want: GateLocalOnly,
		},
		{
			name: "missing remote url is treated as local-only",
			url:  "", want: GateLocalOnly,
		},
		{
			name: "force overrides the local-only condition",
			local: true, force: true, allowed: true,
		},
		{
			name: "dirty working tree is preserved",
			url:  "https://example.com/org/libfoo", dirty: true, want: GateDirty,
		},
		{
			name: "force never substitutes for clean",
			url:  "https://example.com/org/libfoo", dirty: true, force: true, want: GateDirty,
		},
		{
			name: "clean satisfies the dirty condition",
			url:  "https://example.com/org/libfoo", dirty: true, clean: true, allowed: true,
		},
		{
			name: "unpublished commits are preserved",
			url:  "https://example.com/org/libfoo", outgoing: true, want: GateOutgoing,
		},
		{
			name: "force overrides the outgoing condition",
			url:  "https://example.com/org/libfoo", outgoing: true, force: true, allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubBackend{dirty: tt.dirty, outgoing: tt.outgoing}
			e := newTestEngine(stub)
			r := &repo.Repo{
				Name:    "libfoo",
				Path:    t.TempDir(),
				URL:     tt.url,
				IsLocal: tt.local,
				Backend: stub,
			}

			err := e.canUpdate(r, tt.clean, tt.force)
			if tt.allowed {
				if err != nil {
					t.Fatalf("canUpdate refused: %v", err)
				}
				return
			}

			var violation *GateViolation
			if !errors.As(err, &violation) {
				t.Fatalf("error = %v, want *GateViolation", err)
			}
			if violation.Reason != tt.want {
				t.Errorf("reason = %v, want %v", violation.Reason, tt.want)
			}
			if len(violation.Suggestions()) == 0 {
				t.Error("every gate violation carries corrective suggestions")
			}
		})
	}
}

func TestSameRemote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{
			name: "transport differences compare equal",
			a:    "git@github.com:org/libfoo.git",
			b:    "https://github.com/org/libfoo",
			want: true,
		},
		{
			name: "different repositories differ",
			a:    "https://github.com/org/libfoo",
			b:    "https://github.com/org/libbar",
			want: false,
		},
		{
			name: "identical urls compare equal",
			a:    "https://bitbucket.org/owner/libfoo",
			b:    "https://bitbucket.org/owner/libfoo",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sameRemote(tt.a, tt.b); got != tt.want {
				t.Errorf("sameRemote(%q, %q) = %t, want %t", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestGateViolationMessages(t *testing.T) {
	t.Parallel()

	v := &GateViolation{Reason: GateLocalOnly, Name: "libfoo", Path: "/tmp/prog/libfoo"}
	if v.Error() == "" {
		t.Error("violation message should not be empty")
	}

	d := &DetachedHeadError{Path: "/tmp/prog", Backend: "git"}
	if d.Error() == "" {
		t.Error("detached message should not be empty")
	}
}
