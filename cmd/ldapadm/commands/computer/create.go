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
	createPassword string
	createRandom   bool
	createShow     bool
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a machine account",
	Long: `Create a machine account.

The trailing "$" customary for machine names is accepted and stripped
from the uid. With --random-password a generated secret is set and
printed only when --show-password is also given.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Machine password (prompts if not provided)")
	createCmd.Flags().BoolVar(&createRandom, "random-password", false, "Generate a random machine password")
	createCmd.Flags().BoolVar(&createShow, "show-password", false, "Print the generated password")
	createCmd.MarkFlagsMutuallyExclusive("password", "random-password")
}

func runCreate(cmd *cobra.Command, args []string) error {
	name := strings.TrimSuffix(args[0], "$")

	password := createPassword
	switch {
	case createRandom:
		password = uuid.NewString()
	case password == "":
		var err error
		password, err = prompt.PasswordWithConfirmation("Machine password", "Confirm password", 8)
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

	principal, err := dir.Computers.Create(ctx, name, password)
	if err != nil {
		return err
	}

	fmt.Printf("Computer %q created\n", principal.UID)
	fmt.Printf("  DN:        %s\n", principal.DN)
	fmt.Printf("  uidNumber: %d\n", principal.UIDNumber)
	if createRandom && createShow {
		fmt.Printf("  Password:  %s\n", password)
	}
	return nil
}
