// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"arbor-cli/internal/locator"
)

const (
	hgCmd = "hg"

	// hgIgnoreHook activates the repository-local ignore file. Mercurial
	// has no equivalent of .git/info/exclude, so the hook is appended to
	// .hg/hgrc once and the patterns live in .hg/hgignore.
	hgIgnoreHook = "ignore.local = .hg/hgignore"
)

var reHgrcPath = regexp.MustCompile(`^([\w_]+)\s*=\s*(.*)$`)

// Mercurial drives the hg executable.
type Mercurial struct {
	run *Runner
}

// NewMercurial creates the Mercurial backend on top of the given runner.
func NewMercurial(run *Runner) *Mercurial {
	return &Mercurial{run: run}
}

func (*Mercurial) Name() string { return "hg" }

func (*Mercurial) MarkerDir() string { return ".hg" }

// OutgoingWhenNoRemote: `hg outgoing` exits 1 exactly when there is nothing
// to push, so "no comparison target" means "nothing outgoing" here.
func (*Mercurial) OutgoingWhenNoRemote() bool { return false }

// OwnsURL matches the Mercurial URL grammar, including the hosted Bitbucket
// shape that the git backend excludes.
func (*Mercurial) OwnsURL(loc string) bool {
	url, _, ok := locator.SplitURL(loc)
	return ok && locator.IsHgURL(url)
}

func (h *Mercurial) Init(path string) error {
	return h.run.Run("", hgCmd, "init", path, h.quiet())
}

func (h *Mercurial) Clone(url, dest string, opt CloneOptions) error {
	// Mercurial has no shallow clones; depth is ignored.
	if err := h.run.Run("", hgCmd, "clone", locator.Canonical(url, opt.Protocol), dest, h.quiet()); err != nil {
		return err
	}

	if opt.Revision != "" {
		if err := h.run.Run(dest, hgCmd, "checkout", opt.Revision, h.quiet()); err != nil {
			return &RevisionNotFoundError{Revision: opt.Revision, URL: url, Err: err}
		}
	}
	return nil
}

func (h *Mercurial) Add(dir, file string) error {
	return h.run.Run(dir, hgCmd, "add", file, h.quiet())
}

func (h *Mercurial) Remove(dir, file string) error {
	err := h.run.Run(dir, hgCmd, "rm", "-f", file, h.quiet())
	_ = os.Remove(filepath.Join(dir, file)) //nolint:errcheck // best-effort
	return err
}

func (h *Mercurial) Commit(dir string) error {
	return h.run.Run(dir, hgCmd, "commit", h.quiet())
}

func (h *Mercurial) Push(dir string, all bool) error {
	args := []string{"push"}
	if all {
		args = append(args, "--new-branch")
	}
	return h.run.Run(dir, hgCmd, append(args, h.quiet())...)
}

func (h *Mercurial) Pull(dir string) error {
	return h.run.Run(dir, hgCmd, "pull", h.quiet())
}

func (h *Mercurial) Update(dir string, opt UpdateOptions) error {
	if opt.Fetch {
		if err := h.run.Run(dir, hgCmd, "pull", h.quiet()); err != nil {
			return err
		}
	}

	args := []string{"update"}
	if opt.Revision != "" {
		args = append(args, "-r", opt.Revision)
	}
	if opt.Clean {
		args = append(args, "-C")
	}
	return h.run.Run(dir, hgCmd, append(args, h.quiet())...)
}

func (h *Mercurial) Status(dir string) (string, error) {
	return h.run.Output(dir, hgCmd, "status")
}

func (h *Mercurial) Dirty(dir string) (bool, error) {
	out, err := h.run.Output(dir, hgCmd, "status", "-q")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (h *Mercurial) Untracked(dir string) ([]string, error) {
	out, err := h.run.Output(dir, hgCmd, "status", "-u")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range splitLines(out) {
		files = append(files, strings.TrimPrefix(line, "? "))
	}
	return files, nil
}

func (h *Mercurial) Outgoing(dir string) (bool, error) {
	_, err := h.run.Output(dir, hgCmd, "outgoing")
	if err != nil {
		if ExitedWith(err, 1) {
			return h.OutgoingWhenNoRemote(), nil
		}
		return false, err
	}
	return true, nil
}

// IsDetached always reports false: Mercurial working trees have no detached
// state.
func (*Mercurial) IsDetached(string) (bool, error) { return false, nil }

// RemoteURL reads the default path from .hg/hgrc, falling back to
// `hg paths default` when the file carries no [paths] section.
func (h *Mercurial) RemoteURL(dir string) (string, error) {
	if url := h.hgrcDefaultPath(dir); url != "" {
		return locator.Canonical(url, ""), nil
	}

	out, err := h.run.Output(dir, hgCmd, "paths", "default")
	if err != nil {
		return "", err
	}
	return locator.Canonical(strings.TrimSpace(out), ""), nil
}

// CurrentRevision reads the working-tree parent straight out of
// .hg/dirstate: its first six bytes are the binary node id, rendered here as
// the usual 12-character short hash.
func (h *Mercurial) CurrentRevision(dir string) (string, error) {
	f, err := os.Open(filepath.Join(dir, ".hg", "dirstate"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer f.Close()

	node := make([]byte, 6)
	if _, err := io.ReadFull(f, node); err != nil {
		return "", fmt.Errorf("read dirstate: %w", err)
	}
	return hex.EncodeToString(node), nil
}

func (h *Mercurial) WriteIgnores(dir string) error {
	if err := h.ensureIgnoreHook(dir); err != nil {
		return err
	}
	return writeLines(h.excludeFile(dir), append([]string{"syntax: glob"}, DefaultIgnores...))
}

func (h *Mercurial) Ignore(dir, path string) error {
	if err := h.ensureIgnoreHook(dir); err != nil {
		return err
	}
	return appendLineOnce(h.excludeFile(dir), filepath.ToSlash(path))
}

func (h *Mercurial) Unignore(dir, path string) error {
	return removeLine(h.excludeFile(dir), filepath.ToSlash(path))
}

func (*Mercurial) excludeFile(dir string) string {
	return filepath.Join(dir, ".hg", "hgignore")
}

// ensureIgnoreHook appends the ignore.local activation hook to .hg/hgrc if
// it is not there yet.
func (h *Mercurial) ensureIgnoreHook(dir string) error {
	hgrc := filepath.Join(dir, ".hg", "hgrc")
	if slices.Contains(readLines(hgrc), hgIgnoreHook) {
		return nil
	}

	f, err := os.OpenFile(hgrc, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString("[ui]\n" + hgIgnoreHook + "\n")
	return err
}

func (h *Mercurial) hgrcDefaultPath(dir string) string {
	lines := readLines(filepath.Join(dir, ".hg", "hgrc"))
	idx := slices.Index(lines, "[paths]")
	if idx < 0 || idx+1 >= len(lines) {
		return ""
	}

	url := ""
	for _, line := range lines[idx+1:] {
		if strings.HasPrefix(line, "[") {
			break
		}
		m := reHgrcPath.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if m[1] == "default" {
			return m[2]
		}
		if url == "" {
			url = m[2]
		}
	}
	return url
}

func (h *Mercurial) quiet() string {
	if h.run.Verbose() {
		return "-v"
	}
	return "-q"
}
