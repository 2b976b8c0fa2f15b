// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	addDepth    int
	addProtocol string

	// addCmd attaches a new library to the enclosing repository
	addCmd = &cobra.Command{
		Use:   "add <url> [path]",
		Short: "Add a library to the enclosing program or library",
		Long: `Fetch a library into the enclosing repository, write its reference file
and stage the reference so the next commit records the dependency.

The library's own references are materialized recursively.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runAdd,
	}
)

func init() {
	addCmd.Flags().IntVar(&addDepth, "depth", 0, "limit fetched history (0 fetches everything)")
	addCmd.Flags().StringVar(&addProtocol, "protocol", "", "rewrite remote URLs to a transport (ssh, http, https)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}

	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	return eng.Add(root, args[0], path, fetchOptions(addDepth, addProtocol))
}
