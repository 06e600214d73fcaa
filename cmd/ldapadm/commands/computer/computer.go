// Package computer implements machine-account commands for ldapadm.
package computer

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for machine-account management.
var Cmd = &cobra.Command{
	Use:   "computer",
	Short: "Machine account management",
	Long: `Manage machine (computer) accounts in the directory.

Machine accounts get a uid number from the shared counter but no
Samba SID, carry no login shell, and join the configured computers
group as their primary group.

Examples:
  # Create a machine account with a random password
  ldapadm computer create ws01 --random-password

  # List machine accounts
  ldapadm computer list

  # Delete a machine account
  ldapadm computer delete ws01`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(passwdCmd)
}
