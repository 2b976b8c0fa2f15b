// SPDX-License-Identifier: MPL-2.0

package repo

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"arbor-cli/internal/scm"
)

// ProgramConfigFile is the marker file naming the root of a program tree.
// It holds an ordered key=value store.
const ProgramConfigFile = ".arbor"

// Recognized program configuration keys. Unknown keys pass through
// untouched.
const (
	CfgTarget    = "TARGET"
	CfgToolchain = "TOOLCHAIN"
)

var reConfigLine = regexp.MustCompile(`^([\w+-]+)=(.*)$`)

// Program is the logical root of a dependency tree. It is located fresh on
// every invocation and never held across operations.
type Program struct {
	Path string
	Name string

	// IsCwd is true when no marker file or repository boundary was found
	// and the current directory was assumed.
	IsCwd bool

	// IsRepo is true when the program root is itself a repository.
	IsRepo bool
}

// FindProgram walks upward from path until it finds the marker config file
// or, failing that, the outermost enclosing repository.
func FindProgram(reg *scm.Registry, path string) *Program {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	p := &Program{Path: abs, IsCwd: true}
	for dir := abs; ; {
		if _, err := os.Stat(filepath.Join(dir, ProgramConfigFile)); err == nil {
			p.Path = dir
			p.IsCwd = false
			p.IsRepo = reg.IsRepoDir(dir)
			break
		}
		if reg.IsRepoDir(dir) {
			p.Path = dir
			p.IsCwd = false
			p.IsRepo = true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	p.Name = filepath.Base(p.Path)
	return p
}

func (p *Program) configPath() string {
	return filepath.Join(p.Path, ProgramConfigFile)
}

// Config returns the value stored for key, or def when absent.
func (p *Program) Config(key, def string) string {
	for _, line := range p.configLines() {
		if m := reConfigLine.FindStringSubmatch(line); m != nil && m[1] == key {
			return m[2]
		}
	}
	return def
}

// SetConfig stores key=value, replacing any previous value while preserving
// every other line in order.
func (p *Program) SetConfig(key, value string) error {
	var kept []string
	for _, line := range p.configLines() {
		if m := reConfigLine.FindStringSubmatch(line); m != nil && m[1] == key {
			continue
		}
		kept = append(kept, line)
	}
	kept = append(kept, key+"="+value)

	return os.WriteFile(p.configPath(), []byte(strings.Join(kept, "\n")+"\n"), 0o644)
}

func (p *Program) configLines() []string {
	data, err := os.ReadFile(p.configPath())
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
