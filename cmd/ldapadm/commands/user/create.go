package user

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithridate/ldapadm/cmd/ldapadm/cmdutil"
	"github.com/mithridate/ldapadm/internal/cli/prompt"
	"github.com/mithridate/ldapadm/internal/directory"
)

var (
	createDisplayName  string
	createSurname      string
	createPassword     string
	createPrimaryGroup string
	createGroups       string
	createGuest        bool
)

var createCmd = &cobra.Command{
	Use:   "create <uid>",
	Short: "Create a new user",
	Long: `Create a new POSIX and Samba user account.

A uid number and a RID are issued atomically from the directory
counters, and the account is added to its primary group's membership
attributes. The password is prompted for when not given via flag.

Examples:
  # Create a user
  ldapadm user create alice --display-name "Alice Example"

  # Create a user with extra secondary groups
  ldapadm user create bob --groups staff,developers

  # Create a guest account in the guest group
  ldapadm user create visitor --guest`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createDisplayName, "display-name", "", "Full name (defaults to the uid)")
	createCmd.Flags().StringVar(&createSurname, "surname", "", "Surname (defaults to the display name)")
	createCmd.Flags().StringVarP(&createPassword, "password", "p", "", "Password (prompts if not provided)")
	createCmd.Flags().StringVar(&createPrimaryGroup, "primary-group", "", "Primary group name (defaults to the configured users group)")
	createCmd.Flags().StringVar(&createGroups, "groups", "", "Comma-separated list of secondary groups")
	createCmd.Flags().BoolVar(&createGuest, "guest", false, "Create the account in the guest group")
	createCmd.MarkFlagsMutuallyExclusive("primary-group", "guest")
}

func runCreate(cmd *cobra.Command, args []string) error {
	uid := args[0]

	password := createPassword
	if password == "" {
		var err error
		password, err = prompt.PasswordWithConfirmation("Password", "Confirm password", 8)
		if err != nil {
			return err
		}
	}

	displayName := createDisplayName
	if displayName == "" {
		displayName = uid
	}

	var extraGroups []string
	if createGroups != "" {
		for _, name := range strings.Split(createGroups, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				extraGroups = append(extraGroups, trimmed)
			}
		}
	}

	ctx := cmd.Context()
	dir, err := cmdutil.OpenDirectory(ctx)
	if err != nil {
		return err
	}
	defer dir.Close()

	req := &directory.CreateUserRequest{
		UID:          uid,
		DisplayName:  displayName,
		Surname:      createSurname,
		Password:     password,
		PrimaryGroup: createPrimaryGroup,
		ExtraGroups:  extraGroups,
	}

	var principal *directory.Principal
	if createGuest {
		principal, err = dir.Users.CreateGuest(ctx, req)
	} else {
		principal, err = dir.Users.Create(ctx, req)
	}
	if err != nil {
		return err
	}

	fmt.Printf("User %q created\n", principal.UID)
	fmt.Printf("  DN:        %s\n", principal.DN)
	fmt.Printf("  uidNumber: %d\n", principal.UIDNumber)
	fmt.Printf("  gidNumber: %d\n", principal.GIDNumber)
	fmt.Printf("  SID:       %s\n", principal.SID)
	return nil
}
