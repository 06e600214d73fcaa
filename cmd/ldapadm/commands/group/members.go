package group

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var membersCmd = &cobra.Command{
	Use:   "members <group>",
	Short: "List a group's members",
	Long: `List a group's members.

Includes both accounts whose primary group this is (via gidNumber) and
accounts explicitly named in the group's member attributes.`,
	Args: cobra.ExactArgs(1),
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
		members, err := dir.Memberships.Members(ctx, group)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			fmt.Printf("Group %q has no members\n", group.CN)
			return nil
		}
		for _, member := range members {
			fmt.Printf("%-24s uid %d\n", member.UID, member.UIDNumber)
		}
		return nil
	},
}
