// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"

	"arbor-cli/internal/issue"
	"arbor-cli/internal/repo"
	"arbor-cli/internal/toolchain"

	"github.com/spf13/cobra"
)

var (
	buildTool      string
	buildToolchain string
	buildTarget    string
	buildSources   []string
	buildDir       string

	// buildCmd hands the program tree to the external build tool
	buildCmd = &cobra.Command{
		Use:   "build [-- tool arguments]",
		Short: "Build the program with the configured build tool",
		Long: `Invoke the configured external build tool in the program root. The
toolchain and target default to the program's configuration; macro
definitions are read from MACROS.txt when present. Arguments after --
are passed to the tool verbatim.`,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVar(&buildTool, "tool", "", "build tool executable (overrides configuration)")
	buildCmd.Flags().StringVarP(&buildToolchain, "toolchain", "t", "", "compile toolchain (defaults to the program's setting)")
	buildCmd.Flags().StringVarP(&buildTarget, "target", "m", "", "build target (defaults to the program's setting)")
	buildCmd.Flags().StringArrayVar(&buildSources, "source", nil, "additional source directory (repeatable)")
	buildCmd.Flags().StringVar(&buildDir, "build", "", "build output directory")
}

func runBuild(cmd *cobra.Command, args []string) error {
	eng := newEngine()

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	prog := repo.FindProgram(eng.Reg, cwd)
	if prog.IsCwd {
		eng.Log.Warn("no program found, assuming the current directory", "path", prog.Path)
	}

	tool := buildTool
	if tool == "" {
		tool = cfg.Build.Tool
	}
	if tool == "" {
		return issue.NewErrorContext().
			WithOperation("building program " + prog.Name).
			WithResource(prog.Path).
			WithSuggestion("configure a build tool: arbor config set build.tool <executable>").
			WithSuggestion("or pass one explicitly: arbor build --tool <executable>").
			Wrap(errors.New("no build tool configured")).
			BuildError()
	}

	tchain := buildToolchain
	if tchain == "" {
		tchain = prog.Config(repo.CfgToolchain, "")
	}
	target := buildTarget
	if target == "" {
		target = prog.Config(repo.CfgTarget, "")
	}
	outDir := buildDir
	if outDir == "" {
		outDir = cfg.Build.Dir
	}

	macros, err := toolchain.ReadMacros(prog.Path)
	if err != nil {
		return err
	}

	inv := &toolchain.Invocation{
		Tool:      tool,
		Toolchain: tchain,
		Target:    target,
		Sources:   buildSources,
		BuildDir:  outDir,
		Macros:    macros,
		Extra:     args,
	}
	return inv.Run(cmd.Context(), prog.Path, eng.Log)
}
