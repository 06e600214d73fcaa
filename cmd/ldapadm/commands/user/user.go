// Package user implements user management commands for ldapadm.
package user

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for user management.
var Cmd = &cobra.Command{
	Use:   "user",
	Short: "User management",
	Long: `Manage POSIX and Samba user accounts in the directory.

User commands create, delete, and inspect accounts, reset passwords,
and verify credentials.

Examples:
  # Create a user
  ldapadm user create alice --display-name "Alice Example" --password secret

  # Create a guest account
  ldapadm user create visitor --guest

  # Verify credentials
  ldapadm user auth alice

  # List a user's groups
  ldapadm user groups alice

  # Delete a user
  ldapadm user delete alice`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(getCmd)
	Cmd.AddCommand(passwdCmd)
	Cmd.AddCommand(authCmd)
	Cmd.AddCommand(groupsCmd)
}
