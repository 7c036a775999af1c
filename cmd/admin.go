package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/myrtlewealth/blueprint/internal/auth"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	Long: `Create an admin account.

The password is read from --password or, when that is empty, from the
BLUEPRINT_ADMIN_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("BLUEPRINT_ADMIN_PASSWORD")
		}
		if password == "" {
			return eris.New("admin create: a password is required (--password or BLUEPRINT_ADMIN_PASSWORD)")
		}

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		admin, err := auth.NewAccounts(st, nil).Create(ctx, username, email, password)
		if err != nil {
			return eris.Wrap(err, "admin create")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s <%s> (%s)\n", admin.Username, admin.Email, admin.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().String("username", "admin", "admin username")
	adminCreateCmd.Flags().String("email", "", "admin email")
	adminCreateCmd.Flags().String("password", "", "admin password")
	_ = adminCreateCmd.MarkFlagRequired("email")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(adminCmd)
}
