package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the slug admin CLI. Subcommands (migrate, slug, etc.) are attached here.
var rootCmd = &cobra.Command{
	Use:           "slugctl",
	Short:         "Slug engine admin CLI",
	Long:          "Administrative utilities for the slug engine (schema migration, reservations, renames, redirect inspection).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
