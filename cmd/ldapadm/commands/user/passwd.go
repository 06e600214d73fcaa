package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	"github.com/mithridate/ldapadm/internal/cli/prompt"
)

var passwdPassword string

var passwdCmd = &cobra.Command{
	Use:   "passwd <uid>",
	Short: "Reset a user's password",
	Long: `Reset a user's password.

Both the directory password and the Samba NT hash are updated so the
account stays usable for both LDAP binds and NTLM authentication.`,
	Args: cobra.ExactArgs(1),
	RunE: runPasswd,
}

func init() {
	passwdCmd.Flags().StringVarP(&passwdPassword, "password", "p", "", "New password (prompts if not provided)")
}

func runPasswd(cmd *cobra.Command, args []string) error {
	uid := args[0]

	password := passwdPassword
	if password == "" {
		var err error
		password, err = prompt.PasswordWithConfirmation("New password", "Confirm password", 8)
		if err != nil {
			return err
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
	if err := dir.Users.ResetPassword(ctx, principal, password); err != nil {
		return err
	}

	fmt.Printf("Password updated for %q\n", uid)
	return nil
}
