package computer

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	"github.com/mithridate/ldapadm/internal/cli/prompt"
)

var deleteForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a machine account",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	name := strings.TrimSuffix(args[0], "$")

	if !deleteForce {
		confirmed, err := prompt.Confirm(fmt.Sprintf("Delete computer %q", name), false)
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

	principal, err := dir.Computers.Lookup(ctx, name)
	if err != nil {
		return err
	}
	if err := dir.Computers.Delete(ctx, principal); err != nil {
		return err
	}

	fmt.Printf("Computer %q deleted\n", name)
	return nil
}
