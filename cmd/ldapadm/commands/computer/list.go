package computer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List machine accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, err := cmdutil.OpenDirectory(ctx)
		if err != nil {
			return err
		}
		defer dir.Close()

		computers, err := dir.Computers.List(ctx)
		if err != nil {
			return err
		}
		if len(computers) == 0 {
			fmt.Println("No machine accounts found")
			return nil
		}
		for _, computer := range computers {
			fmt.Printf("%-24s uid %d\n", computer.UID, computer.UIDNumber)
		}
		return nil
	},
}
