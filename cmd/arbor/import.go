// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	importDepth    int
	importProtocol string

	// importCmd fetches a program and materializes its whole tree
	importCmd = &cobra.Command{
		Use:   "import <url> [path]",
		Short: "Fetch a program and all of its libraries",
		Long: `Fetch a program from a URL and recursively materialize every library
its references name, each at its pinned revision.

The locator may pin a revision with a '#' suffix:

  arbor import https://example.com/org/program
  arbor import https://example.com/org/program#1a2b3c4d dest-dir`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runImport,
	}
)

func init() {
	importCmd.Flags().IntVar(&importDepth, "depth", 0, "limit fetched history (0 fetches everything)")
	importCmd.Flags().StringVar(&importProtocol, "protocol", "", "rewrite remote URLs to a transport (ssh, http, https)")
}

func runImport(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	return eng.Import(args[0], path, fetchOptions(importDepth, importProtocol))
}
