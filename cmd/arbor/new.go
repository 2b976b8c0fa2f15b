// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/repo"
	"arbor-cli/internal/tree"

	"github.com/spf13/cobra"
)

var (
	newSCM     string
	newLibrary bool

	// newCmd creates a fresh program or library
	newCmd = &cobra.Command{
		Use:   "new <path>",
		Short: "Create a new program or library",
		Long: `Create a new program (or, with --library, a library) at the given path.

The directory is initialized as a repository under the selected version
control system with the standard ignore rules in place. A program
additionally gets the marker config file that anchors its dependency tree.
When the new repository is nested inside an existing one, the parent's
references are synchronized so the new entry is tracked immediately.`,
		Args: cobra.ExactArgs(1),
		RunE: runNew,
	}
)

func init() {
	newCmd.Flags().StringVar(&newSCM, "scm", "git", "version control system to initialize (git, hg)")
	newCmd.Flags().BoolVar(&newLibrary, "library", false, "create a library instead of a program")
}

func runNew(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	backend, ok := eng.Reg.ByName(newSCM)
	if !ok {
		return issue.NewErrorContext().
			WithOperation("creating " + path).
			WithResource(newSCM).
			WithSuggestion("supported systems: git, hg").
			Wrap(fmt.Errorf("unknown version control system %q", newSCM)).
			BuildError()
	}

	if eng.Reg.IsRepoDir(path) {
		return issue.NewErrorContext().
			WithOperation("creating " + path).
			WithResource(path).
			WithSuggestion("use 'arbor add' to attach an existing library to a tree").
			Wrap(errors.New("directory is already a repository")).
			BuildError()
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}

	kind := "program"
	if newLibrary {
		kind = "library"
	}
	eng.Log.Info("creating new "+kind, "path", path, "scm", backend.Name())

	if err := backend.Init(path); err != nil {
		return err
	}
	if err := backend.WriteIgnores(path); err != nil {
		return err
	}

	if !newLibrary {
		marker := filepath.Join(path, repo.ProgramConfigFile)
		if _, err := os.Stat(marker); os.IsNotExist(err) {
			if err := os.WriteFile(marker, nil, 0o644); err != nil {
				return err
			}
		}
	}

	// Nested under an existing tree: record the newcomer in the parent.
	if parent, ok := repo.FindRoot(eng.Reg, filepath.Dir(path)); ok {
		if err := eng.Sync(parent, tree.SyncOptions{}); err != nil {
			return err
		}
	}

	fmt.Printf("%s Created %s %s\n", SuccessStyle.Render("✓"), kind, CmdStyle.Render(path))
	return nil
}
