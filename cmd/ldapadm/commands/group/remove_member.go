package group

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var removeMemberCmd = &cobra.Command{
	Use:   "remove-member <group> <uid>",
	Short: "Remove a user from a group",
	Long: `Remove a user from a group's secondary membership.

Both memberUid and member values are removed in a single directory
operation. Removing a non-member is a no-op.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, err := cmdutil.OpenDirectory(ctx)
		if err != nil {
			return err
		}
		defer dir.Close()

		group, err := dir.Groups.ByName(ctx, args[0])
		if err != nil {
			return err
		}
		principal, err := dir.Users.Lookup(ctx, args[1])
		if err != nil {
			return err
		}
		if err := dir.Memberships.RemoveMember(ctx, group, principal); err != nil {
			return err
		}

		fmt.Printf("Removed %q from %q\n", principal.UID, group.CN)
		return nil
	},
}
