package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	"github.com/mithridate/ldapadm/internal/cli/prompt"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <uid>",
	Short: "Delete a user",
	Long: `Delete a user account.

The account is first withdrawn from every secondary group so that no
dangling memberUid or member values remain, then the entry is removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	uid := args[0]

	if !deleteForce {
		confirmed, err := prompt.Confirm(fmt.Sprintf("Delete user %q", uid), false)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted")
			return nil
		}
	}

	ctx := cmd.Context()
	dir, err := cmdutil.OpenDirectory(ctx)
	if err != nil {
		return err
	}
	defer dir.Close()

	principal, err := dir.Users.Lookup(ctx, uid)
	if err != nil {
		return err
	}
	if err := dir.Users.Delete(ctx, principal); err != nil {
		return err
	}

	fmt.Printf("User %q deleted\n", uid)
	return nil
}
