// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"arbor-cli/internal/tree"

	"github.com/spf13/cobra"
)

var (
	updateClean        bool
	updateForce        bool
	updateIgnoreErrors bool
	updateDepth        int
	updateProtocol     string

	// updateCmd advances the tree to a revision and reconciles its libraries
	updateCmd = &cobra.Command{
		Use:   "update [revision]",
		Short: "Update the tree to a revision and reconcile its libraries",
		Long: `Update the enclosing repository to the given revision (or the latest
revision of its current branch) and reconcile the tree below it: libraries
the new revision drops or re-homes are removed, newly referenced ones are
fetched, and the rest are moved to their pinned revisions.

Removal of a library is refused when it only exists locally, has uncommitted
changes, or has unpublished commits. --clean discards uncommitted changes,
--force overrides the other two conditions, and --ignore leaves the
offending library in place with a warning.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runUpdate,
	}
)

func init() {
	updateCmd.Flags().BoolVarP(&updateClean, "clean", "C", false, "discard uncommitted changes (irreversible)")
	updateCmd.Flags().BoolVarP(&updateForce, "force", "F", false, "remove local-only libraries and unpublished commits")
	updateCmd.Flags().BoolVarP(&updateIgnoreErrors, "ignore", "I", false, "warn instead of failing when a library cannot be removed")
	updateCmd.Flags().IntVar(&updateDepth, "depth", 0, "limit fetched history (0 fetches everything)")
	updateCmd.Flags().StringVar(&updateProtocol, "protocol", "", "rewrite remote URLs to a transport (ssh, http, https)")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}

	revision := ""
	if len(args) > 0 {
		revision = args[0]
	}

	return eng.Update(root, revision, tree.UpdateOptions{
		FetchOptions: fetchOptions(updateDepth, updateProtocol),
		Clean:        updateClean,
		Force:        updateForce,
		IgnoreErrors: updateIgnoreErrors,
	})
}
