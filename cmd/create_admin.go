/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/cbthost/voter-registry/config"
	"github.com/cbthost/voter-registry/internal/auth"
	"github.com/cbthost/voter-registry/internal/db"
	"github.com/cbthost/voter-registry/internal/services"
	"github.com/cbthost/voter-registry/internal/store"
	"github.com/cbthost/voter-registry/types"
	"github.com/spf13/cobra"
)

var createAdminFlags struct {
	username string
	password string
	email    string
	role     string
}

// createAdminCmd bootstraps an administrator account, typically the first one.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account. Usage:

	voterreg create-admin --username admin --password 'changeme' --role superadmin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := newLogger(cfg)

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer dbConn.Close()

		// Creating an account never signs tokens, so no issuer is needed.
		adminService := services.NewAdminService(
			store.NewAdminRepository(dbConn),
			auth.NewPasswordHasher(),
			nil,
			logger,
			nil,
		)

		admin, err := adminService.Create(cmd.Context(), services.NewAdmin{
			Username: createAdminFlags.username,
			Email:    createAdminFlags.email,
			Password: createAdminFlags.password,
			Role:     types.Role(createAdminFlags.role),
		})
		if err != nil {
			var validation *services.ValidationError
			switch {
			case errors.As(err, &validation):
				return errors.New(validation.Message)
			case errors.Is(err, store.ErrDuplicateKey):
				return errors.New("admin with this username or email already exists")
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", admin.Role, admin.Username, admin.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&createAdminFlags.username, "username", "", "login name")
	createAdminCmd.Flags().StringVar(&createAdminFlags.password, "password", "", "initial password")
	createAdminCmd.Flags().StringVar(&createAdminFlags.email, "email", "", "optional contact email")
	createAdminCmd.Flags().StringVar(&createAdminFlags.role, "role", string(types.RoleAdmin), "admin or superadmin")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("password")
}
