package computer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	"github.com/mithridate/ldapadm/internal/cli/prompt"
)

var (
	passwdPassword string
	passwdRandom   bool
	passwdShow     bool
)

var passwdCmd = &cobra.Command{
	Use:   "passwd <name>",
	Short: "Reset a machine account's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runPasswd,
}

func init() {
	passwdCmd.Flags().StringVarP(&passwdPassword, "password", "p", "", "New password (prompts if not provided)")
	passwdCmd.Flags().BoolVar(&passwdRandom, "random-password", false, "Generate a random machine password")
	passwdCmd.Flags().BoolVar(&passwdShow, "show-password", false, "Print the generated password")
	passwdCmd.MarkFlagsMutuallyExclusive("password", "random-password")
}

func runPasswd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSuffix(args[0], "$")

	password := passwdPassword
	switch {
	case passwdRandom:
		password = uuid.NewString()
	case password == "":
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

	principal, err := dir.Computers.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if err := dir.Computers.ResetPassword(ctx, principal, password); err != nil {
		return err
	}

	fmt.Printf("Password updated for %q\n", name)
	if passwdRandom && passwdShow {
		fmt.Printf("  Password: %s\n", password)
	}
	return nil
}
