// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// removeCmd detaches a library from the enclosing repository
var removeCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a library from the enclosing program or library",
	Long: `Delete a library's working directory, drop its reference file and stage
the removal so the next commit records the dropped dependency.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}
	return eng.Remove(root, args[0])
}
