// Package group implements group management commands for ldapadm.
package group

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for group management.
var Cmd = &cobra.Command{
	Use:   "group",
	Short: "Group management",
	Long: `Manage POSIX groups and their dual membership attributes.

Membership edits always touch memberUid and member together, so the
NSS and Samba views of a group never diverge.

Examples:
  # List all groups
  ldapadm group list

  # List a group's members
  ldapadm group members staff

  # Add and remove members
  ldapadm group add-member staff alice
  ldapadm group remove-member staff alice`,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(membersCmd)
	Cmd.AddCommand(addMemberCmd)
	Cmd.AddCommand(removeMemberCmd)
}
