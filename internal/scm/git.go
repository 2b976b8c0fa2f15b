// SPDX-License-Identifier: MPL-2.0

package scm

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"arbor-cli/internal/locator"
)

const gitCmd = "git"

// Git drives the git executable.
type Git struct {
	run *Runner
}

// NewGit creates the git backend on top of the given runner.
func NewGit(run *Runner) *Git {
	return &Git{run: run}
}

func (*Git) Name() string { return "git" }

func (*Git) MarkerDir() string { return ".git" }

// OutgoingWhenNoRemote: with no comparison target at all, git cannot prove
// local history is published, so the safe answer is "outgoing".
func (*Git) OutgoingWhenNoRemote() bool { return true }

// OwnsURL matches the git URL grammar, excluding the hosted shape owned by
// the Mercurial backend.
func (*Git) OwnsURL(loc string) bool {
	url, _, ok := locator.SplitURL(loc)
	return ok && locator.IsGitURL(url)
}

func (g *Git) Init(path string) error {
	return g.run.Run("", gitCmd, g.quiet("init", path)...)
}

func (g *Git) Clone(url, dest string, opt CloneOptions) error {
	args := []string{"clone", locator.Canonical(url, opt.Protocol), dest}
	if opt.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opt.Depth))
	}
	if err := g.run.Run("", gitCmd, g.quiet(args...)...); err != nil {
		return err
	}

	if opt.Revision != "" {
		if err := g.run.Run(dest, gitCmd, g.quiet("checkout", opt.Revision)...); err != nil {
			return &RevisionNotFoundError{Revision: opt.Revision, URL: url, Err: err}
		}
	}
	return nil
}

func (g *Git) Add(dir, file string) error {
	args := []string{"add", file}
	if g.run.Verbose() {
		args = append(args, "-v")
	}
	return g.run.Run(dir, gitCmd, args...)
}

func (g *Git) Remove(dir, file string) error {
	err := g.run.Run(dir, gitCmd, g.quiet("rm", "-f", file)...)
	// The file may be untracked; make sure it is gone either way.
	_ = os.Remove(filepath.Join(dir, file)) //nolint:errcheck // best-effort
	return err
}

func (g *Git) Commit(dir string) error {
	return g.run.Run(dir, gitCmd, g.quiet("commit", "-a")...)
}

func (g *Git) Push(dir string, all bool) error {
	args := []string{"push"}
	if all {
		args = append(args, "--all")
	}
	return g.run.Run(dir, gitCmd, g.quiet(args...)...)
}

func (g *Git) Pull(dir string) error {
	return g.run.Run(dir, gitCmd, g.quiet("fetch", "--all")...)
}

func (g *Git) Update(dir string, opt UpdateOptions) error {
	if opt.Clean {
		// Unstage, revert modified files, then drop untracked files and
		// directories.
		if err := g.run.Run(dir, gitCmd, g.quiet("reset", "HEAD")...); err != nil {
			return err
		}
		if err := g.run.Run(dir, gitCmd, g.quiet("checkout", ".")...); err != nil {
			return err
		}
		if err := g.run.Run(dir, gitCmd, g.quiet("clean", "-fd")...); err != nil {
			return err
		}
	}

	if opt.Revision != "" {
		if opt.Fetch {
			if err := g.run.Run(dir, gitCmd, g.quiet("fetch", "--all")...); err != nil {
				return err
			}
		}
		return g.run.Run(dir, gitCmd, g.quiet("checkout", opt.Revision)...)
	}

	if opt.Fetch {
		return g.run.Run(dir, gitCmd, g.quiet("pull", "--all")...)
	}
	return nil
}

func (g *Git) Status(dir string) (string, error) {
	return g.run.Output(dir, gitCmd, "status", "-s")
}

func (g *Git) Dirty(dir string) (bool, error) {
	out, err := g.run.Output(dir, gitCmd, "diff", "--name-only", "HEAD")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (g *Git) Untracked(dir string) ([]string, error) {
	out, err := g.run.Output(dir, gitCmd, "ls-files", "--others", "--exclude-standard")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

func (g *Git) Outgoing(dir string) (bool, error) {
	out, err := g.run.Output(dir, gitCmd, "log", "origin..")
	if err != nil {
		if ExitedWith(err, 1) {
			return g.OutgoingWhenNoRemote(), nil
		}
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

func (g *Git) IsDetached(dir string) (bool, error) {
	out, err := g.run.Output(dir, gitCmd, "rev-parse", "--symbolic-full-name", "--abbrev-ref", "HEAD")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "HEAD", nil
}

// RemoteURL returns the fetch URL of the configured remote, preferring
// "origin" when several remotes exist.
func (g *Git) RemoteURL(dir string) (string, error) {
	out, err := g.run.Output(dir, gitCmd, "remote", "-v")
	if err != nil {
		return "", err
	}

	url := ""
	for _, line := range splitLines(out) {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[2] == "(fetch)" {
			url = fields[1]
			if fields[0] == "origin" {
				break
			}
		}
	}
	return locator.Canonical(url, ""), nil
}

func (g *Git) CurrentRevision(dir string) (string, error) {
	out, err := g.run.Output(dir, gitCmd, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) WriteIgnores(dir string) error {
	return writeLines(g.excludeFile(dir), DefaultIgnores)
}

func (g *Git) Ignore(dir, path string) error {
	return appendLineOnce(g.excludeFile(dir), filepath.ToSlash(path))
}

func (g *Git) Unignore(dir, path string) error {
	return removeLine(g.excludeFile(dir), filepath.ToSlash(path))
}

func (*Git) excludeFile(dir string) string {
	return filepath.Join(dir, ".git", "info", "exclude")
}

func (g *Git) quiet(args ...string) []string {
	if g.run.Verbose() {
		return args
	}
	return append(args, "-q")
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
