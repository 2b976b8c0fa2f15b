// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"arbor-cli/internal/repo"
	"arbor-cli/internal/toolchain"

	"github.com/spf13/cobra"
)

var (
	deployDepth    int
	deployProtocol string

	// deployCmd materializes the tree described by the reference files
	deployCmd = &cobra.Command{
		Use:   "deploy",
		Short: "Fetch all libraries named by the reference files",
		Long: `Materialize the dependency tree of the enclosing repository: fetch every
library its references name at the pinned revision, recursively. Libraries
already present are moved to their pinned revision.

If a post-deploy hook is configured, it runs in the program root once the
tree is complete.`,
		Args: cobra.NoArgs,
		RunE: runDeploy,
	}
)

func init() {
	deployCmd.Flags().IntVar(&deployDepth, "depth", 0, "limit fetched history (0 fetches everything)")
	deployCmd.Flags().StringVar(&deployProtocol, "protocol", "", "rewrite remote URLs to a transport (ssh, http, https)")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	root, err := enclosingRepo(eng)
	if err != nil {
		return err
	}

	if script := cfg.Hooks.PostDeploy; script != "" {
		eng.PostDeploy = func(prog *repo.Program) error {
			eng.Log.Debug("running post-deploy hook", "program", prog.Name)
			env := []string{
				"ARBOR_PROGRAM=" + prog.Name,
				"ARBOR_ROOT=" + prog.Path,
			}
			return toolchain.RunHook(cmd.Context(), script, prog.Path, env, os.Stdout, os.Stderr)
		}
	}

	return eng.Deploy(root, fetchOptions(deployDepth, deployProtocol))
}
