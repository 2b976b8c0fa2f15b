// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	lsAll          bool
	lsIgnoreErrors bool

	// lsCmd renders the dependency tree
	lsCmd = &cobra.Command{
		Use:   "ls",
		Short: "Show the dependency tree",
		Long: `Render the dependency tree of the enclosing repository. Each node shows
its pinned revision; --all shows the full locator including the URL.`,
		Args: cobra.NoArgs,
		RunE: runLs,
	}
)

func init() {
	lsCmd.Flags().BoolVarP(&lsAll, "all", "a", false, "show full locators instead of revisions")
	lsCmd.Flags().BoolVarP(&lsIgnoreErrors, "ignore", "I", false, "warn instead of failing on stale references")
}

func runLs(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}
	return eng.List(root, lsAll, lsIgnoreErrors)
}
