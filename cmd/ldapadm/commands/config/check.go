package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and directory connectivity",
	Long: `Validate the configuration and verify the directory is reachable.

Loads and validates the configuration, opens a session, and checks
that the domain entry can be found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir, err := cmdutil.OpenDirectory(ctx)
		if err != nil {
			return err
		}
		defer dir.Close()

		if err := dir.Ping(ctx); err != nil {
			return fmt.Errorf("directory unreachable: %w", err)
		}

		domain, err := dir.Domains.Find(ctx)
		if err != nil {
			return err
		}

		fmt.Println("Configuration OK")
		fmt.Printf("  Domain: %s\n", domain.Name)
		fmt.Printf("  SID:    %s\n", domain.SID)
		return nil
	},
}
