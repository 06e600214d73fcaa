package user

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	"github.com/mithridate/ldapadm/internal/cli/prompt"
)

var authPassword string

var authCmd = &cobra.Command{
	Use:   "auth <uid>",
	Short: "Verify a user's credentials",
	Long: `Verify a user's credentials with a directory bind.

The check runs on a separate throwaway session, so the managing
session's identity is unaffected. Exits non-zero when the credentials
are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuth,
}

func init() {
	authCmd.Flags().StringVarP(&authPassword, "password", "p", "", "Password to verify (prompts if not provided)")
}

func runAuth(cmd *cobra.Command, args []string) error {
	uid := args[0]

	password := authPassword
	if password == "" {
		var err error
		password, err = prompt.Password("Password")
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

	ok, err := dir.Users.Authenticate(ctx, uid, password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("authentication failed for %q", uid)
	}

	fmt.Printf("Credentials accepted for %q\n", uid)
	return nil
}
