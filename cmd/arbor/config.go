// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"arbor-cli/internal/config"
	"arbor-cli/internal/issue"

	"github.com/spf13/cobra"
)

var (
	// configCmd groups the configuration subcommands
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage arbor's tool configuration",
		Long: `Manage arbor's own configuration: fetch defaults, the external build
tool and hook scripts. Program-level settings (target, toolchain) live
with the program instead; see 'arbor target' and 'arbor toolchain'.`,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the active configuration",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE:  runConfigPath,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value and write the config file.

Keys:
  protocol           default transport for clones (ssh, http, https)
  depth              default history depth for clones (0 = everything)
  verbose            enable verbose output by default (true, false)
  build.tool         external build tool executable
  build.dir          build output directory
  hooks.post_deploy  shell snippet run after deploy completes`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	fmt.Println(TitleStyle.Render("arbor configuration"))
	fmt.Printf("  protocol:          %s\n", orUnset(cfg.Protocol))
	fmt.Printf("  depth:             %d\n", cfg.Depth)
	fmt.Printf("  verbose:           %t\n", cfg.Verbose)
	fmt.Printf("  build.tool:        %s\n", orUnset(cfg.Build.Tool))
	fmt.Printf("  build.dir:         %s\n", orUnset(cfg.Build.Dir))
	fmt.Printf("  hooks.post_deploy: %s\n", orUnset(cfg.Hooks.PostDeploy))
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.ConfigFilePath()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	switch key {
	case "protocol":
		cfg.Protocol = value
	case "depth":
		depth, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("depth must be a number: %w", err)
		}
		cfg.Depth = depth
	case "verbose":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("verbose must be true or false: %w", err)
		}
		cfg.Verbose = enabled
	case "build.tool":
		cfg.Build.Tool = value
	case "build.dir":
		cfg.Build.Dir = value
	case "hooks.post_deploy":
		cfg.Hooks.PostDeploy = value
	default:
		return issue.NewErrorContext().
			WithOperation("setting configuration").
			WithResource(key).
			WithSuggestion("run 'arbor config set --help' for the list of keys").
			Wrap(fmt.Errorf("unknown configuration key %q", key)).
			BuildError()
	}

	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("%s Set %s to %s\n", SuccessStyle.Render("✓"), key, CmdStyle.Render(value))
	return nil
}

func orUnset(value string) string {
	if value == "" {
		return SubtitleStyle.Render("(unset)")
	}
	return value
}
