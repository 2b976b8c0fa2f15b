// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	publishAll bool

	// publishCmd pushes the tree, children before parents
	publishCmd = &cobra.Command{
		Use:   "publish",
		Short: "Push local changes, children before parents",
		Long: `Publish the enclosing repository and its libraries depth-first: each
library is published before the parent that references it, so the parent's
references never point at revisions the remote has not seen.

Repositories with uncommitted changes prompt for a commit before pushing.`,
		Args: cobra.NoArgs,
		RunE: runPublish,
	}
)

func init() {
	publishCmd.Flags().BoolVarP(&publishAll, "all", "A", false, "push all branches, not just the current one")
}

func runPublish(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}
	return eng.Publish(root, publishAll)
}
