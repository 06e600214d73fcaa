package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var groupsCmd = &cobra.Command{
	Use:   "groups <uid>",
	Short: "List a user's groups",
	Long: `List a user's primary and secondary groups.

The primary group is resolved from the account's gidNumber; secondary
groups come from the group entries naming the account as a member.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, err := cmdutil.OpenDirectory(ctx)
		if err != nil {
			return err
		}
		defer dir.Close()

		principal, err := dir.Users.Lookup(ctx, args[0])
		if err != nil {
			return err
		}
		membership, err := dir.Users.Groups(ctx, principal)
		if err != nil {
			return err
		}

		fmt.Printf("Primary:   %s (gid %d)\n", membership.Primary.CN, membership.Primary.GID)
		if len(membership.Secondary) == 0 {
			fmt.Println("Secondary: none")
			return nil
		}
		fmt.Println("Secondary:")
		for _, group := range membership.Secondary {
			fmt.Printf("  %s (gid %d)\n", group.CN, group.GID)
		}
		return nil
	},
}
