// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"arbor-cli/internal/repo"

	"github.com/spf13/cobra"
)

var (
	// targetCmd reads or sets the program's build target
	targetCmd = &cobra.Command{
		Use:   "target [name]",
		Short: "Show or set the program's build target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgramConfig(repo.CfgTarget, "target", args)
		},
	}

	// toolchainCmd reads or sets the program's toolchain
	toolchainCmd = &cobra.Command{
		Use:   "toolchain [name]",
		Short: "Show or set the program's toolchain",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgramConfig(repo.CfgToolchain, "toolchain", args)
		},
	}
)

// runProgramConfig implements the get/set convention shared by the target
// and toolchain commands: no argument prints the value, one argument sets it.
func runProgramConfig(key, label string, args []string) error {
	eng := newEngine()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	prog := repo.FindProgram(eng.Reg, cwd)
	if prog.IsCwd {
		eng.Log.Warn("no program found, assuming the current directory", "path", prog.Path)
	}

	if len(args) == 0 {
		value := prog.Config(key, "")
		if value == "" {
			fmt.Printf("No %s set in program %s\n", label, CmdStyle.Render(prog.Name))
			return nil
		}
		fmt.Println(value)
		return nil
	}

	if err := prog.SetConfig(key, args[0]); err != nil {
		return err
	}
	fmt.Printf("%s Set %s to %s in program %s\n",
		SuccessStyle.Render("✓"), label, CmdStyle.Render(args[0]), CmdStyle.Render(prog.Name))
	return nil
}
