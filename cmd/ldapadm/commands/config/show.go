package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
)

var showSecrets bool

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cmdutil.LoadConfig()
		if err != nil {
			return err
		}

		if !showSecrets && cfg.Directory.BindPassword != "" {
			cfg.Directory.BindPassword = "<redacted>"
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	showCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Include credentials in the output")
}
