package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var getCmd = &cobra.Command{
	Use:   "get <uid>",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
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

		fmt.Printf("User %q\n", principal.UID)
		fmt.Printf("  DN:        %s\n", principal.DN)
		fmt.Printf("  uidNumber: %d\n", principal.UIDNumber)
		fmt.Printf("  gidNumber: %d\n", principal.GIDNumber)
		fmt.Printf("  SID:       %s\n", principal.SID)
		return nil
	},
}
