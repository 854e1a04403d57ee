/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/brgy-records/apiserver/config"
	"github.com/brgy-records/apiserver/internal/db"
	"github.com/brgy-records/apiserver/internal/services"
	"github.com/brgy-records/apiserver/internal/store"
	"github.com/brgy-records/apiserver/internal/validation"
	"github.com/brgy-records/apiserver/types"
	"github.com/spf13/cobra"
)

var (
	newUsername string
	newEmail    string
	newPassword string
	newRole     string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage staff accounts",
}

// usersCreateCmd bootstraps accounts; the register route itself is admin-only.
var usersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff or admin account",
	Long: `Creates an account directly in the database. Usage:

	brgy users create --username captain --email captain@example.com --password s3cret! --role admin
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		in := validation.Registration{
			Username: newUsername,
			Email:    newEmail,
			Password: newPassword,
			Role:     types.Role(newRole),
		}
		if err := validation.New().Struct(&in); err != nil {
			return err
		}

		conn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer conn.Close()

		user, err := services.NewUserService(store.NewUserRepository(conn)).Register(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s account %q (id %d)\n", user.Role, user.Username, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersCreateCmd)

	usersCreateCmd.Flags().StringVar(&newUsername, "username", "", "login name")
	usersCreateCmd.Flags().StringVar(&newEmail, "email", "", "email address")
	usersCreateCmd.Flags().StringVar(&newPassword, "password", "", "initial password")
	usersCreateCmd.Flags().StringVar(&newRole, "role", string(types.RoleStaff), "admin or staff")
	_ = usersCreateCmd.MarkFlagRequired("username")
	_ = usersCreateCmd.MarkFlagRequired("email")
	_ = usersCreateCmd.MarkFlagRequired("password")
}
