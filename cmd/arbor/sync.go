// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"arbor-cli/internal/tree"

	"github.com/spf13/cobra"
)

// syncCmd reconciles reference files with on-disk reality
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize reference files with the libraries on disk",
	Long: `Reconcile the reference files of the enclosing repository with what is
actually on disk: refresh references whose library moved to a different
revision, drop references to libraries that are gone, and write fresh
references for nested repositories that have none yet. The reconciliation
repeats inside every library.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}
	return eng.Sync(root, tree.SyncOptions{Recursive: true})
}
