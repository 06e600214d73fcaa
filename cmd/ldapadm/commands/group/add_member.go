package group

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var addMemberCmd = &cobra.Command{
	Use:   "add-member <group> <uid>",
	Short: "Add a user to a group",
	Long: `Add a user to a group's secondary membership.

The user's uid and DN are added to memberUid and member in a single
directory operation. Adding an existing member is a no-op.`,
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
		if err := dir.Memberships.AddMember(ctx, group, principal); err != nil {
			return err
		}

		fmt.Printf("Added %q to %q\n", principal.UID, group.CN)
		return nil
	},
}
