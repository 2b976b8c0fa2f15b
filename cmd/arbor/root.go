// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"arbor-cli/internal/config"
	"arbor-cli/internal/issue"
	"arbor-cli/internal/scm"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded tool configuration, populated before any RunE.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "arbor",
		Short: "A source-level dependency manager for nested repositories",
		Long: TitleStyle.Render("arbor") + SubtitleStyle.Render(" - a source-level dependency manager for nested repositories") + `

arbor manages trees of git and mercurial repositories linked by small
reference files. A program pins each library to a URL and revision; arbor
materializes, inspects and advances the whole tree from those references.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Create a program with: arbor new <name>
  2. Add libraries with: arbor add <url>
  3. Recreate the tree anywhere with: arbor deploy

` + SubtitleStyle.Render("Examples:") + `
  arbor import https://example.com/org/program   Fetch a program and its tree
  arbor ls                                       Show the dependency tree
  arbor update                                   Advance the tree to the latest revisions
  arbor publish                                  Push local changes, children first`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/arbor/config.toml)")

	// Add subcommands
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(targetCmd)
	rootCmd.AddCommand(toolchainCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}

	// Actionable errors carry recovery suggestions fang's renderer drops.
	if msg, ok := renderActionable(err); ok {
		fmt.Fprintln(os.Stderr, msg)
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	// Failed subprocesses pass their exit status through verbatim.
	var procErr *scm.ProcessError
	if errors.As(err, &procErr) && procErr.ExitCode > 0 {
		os.Exit(procErr.ExitCode)
	}
	os.Exit(255)
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}
	if loaded == nil {
		loaded = config.DefaultConfig()
	}
	cfg = loaded

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.Verbose
	}
}

// renderActionable renders the recovery suggestions that fang's own error
// output drops, with the styled prefix used for the rest of the CLI surface.
func renderActionable(err error) (string, bool) {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !ae.HasSuggestions() {
		return "", false
	}
	return ErrorStyle.Render("Error: ") + ae.Format(verbose), true
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
