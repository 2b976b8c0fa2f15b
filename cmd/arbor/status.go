// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	statusIgnoreErrors bool

	// statusCmd reports uncommitted changes across the tree
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show uncommitted changes across the tree",
		Long: `Walk the dependency tree of the enclosing repository and print the
version-control status of every repository with uncommitted changes.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
)

func init() {
	statusCmd.Flags().BoolVarP(&statusIgnoreErrors, "ignore", "I", false, "warn instead of failing on stale references")
}

func runStatus(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}
	return eng.Status(root, statusIgnoreErrors)
}
