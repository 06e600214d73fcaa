// Package commands implements the CLI commands for ldapadm.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	computercmd "github.com/mithridate/ldapadm/cmd/ldapadm/commands/computer"
	configcmd "github.com/mithridate/ldapadm/cmd/ldapadm/commands/config"
	groupcmd "github.com/mithridate/ldapadm/cmd/ldapadm/commands/group"
	usercmd "github.com/mithridate/ldapadm/cmd/ldapadm/commands/user"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ldapadm",
	Short: "POSIX and Samba identity management for LDAP directories",
	Long: `ldapadm provisions POSIX and Samba identities in an LDAP directory.

It manages users, groups, and computer accounts with atomically issued
uid, gid, and RID numbers, and keeps both membership attribute families
(memberUid and member) consistent.

Use "ldapadm [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cmdutil.Flags.ConfigPath, _ = cmd.Flags().GetString("config")
		cmdutil.Flags.URL, _ = cmd.Flags().GetString("url")
		cmdutil.Flags.BindDN, _ = cmd.Flags().GetString("bind-dn")
		cmdutil.Flags.BindPassword, _ = cmd.Flags().GetString("bind-password")
		cmdutil.Flags.BaseDN, _ = cmd.Flags().GetString("base-dn")
		cmdutil.Flags.Verbose, _ = cmd.Flags().GetBool("verbose")
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().String("url", "", "Directory URL (overrides configuration)")
	rootCmd.PersistentFlags().String("bind-dn", "", "Bind DN (overrides configuration)")
	rootCmd.PersistentFlags().String("bind-password", "", "Bind password (overrides configuration)")
	rootCmd.PersistentFlags().String("base-dn", "", "Directory suffix (overrides configuration)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(usercmd.Cmd)
	rootCmd.AddCommand(groupcmd.Cmd)
	rootCmd.AddCommand(computercmd.Cmd)
	rootCmd.AddCommand(configcmd.Cmd)
}
