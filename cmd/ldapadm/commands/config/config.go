// Package config implements configuration commands for ldapadm.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for configuration inspection.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration inspection",
	Long: `Inspect the effective ldapadm configuration.

Shows the merged result of the configuration file, LDAPADM_*
environment variables, command-line overrides, and defaults.`,
}

func init() {
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(checkCmd)
}
