package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tourcms/internal/db"
	"github.com/tourcms/internal/service"
)

var (
	newUsername string
	newPassword string
	newRole     string
	newName     string
	newEmail    string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage dashboard users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a dashboard user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		// 仅创建用户，不签发令牌
		user, err := service.NewAuthService(gdb, nil).CreateUser(service.UserInput{
			Username: newUsername,
			Password: newPassword,
			Name:     newName,
			Email:    newEmail,
			Role:     newRole,
		})
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %q (id %d)\n", user.Role, user.Username, user.ID)
		return nil
	},
}

var userPurgeSessionsCmd = &cobra.Command{
	Use:   "purge-sessions",
	Short: "Delete expired API token sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(gdb)

		purged, err := service.NewAuthService(gdb, nil).PurgeExpiredSessions()
		if err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", purged)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVarP(&newUsername, "username", "u", "", "login name")
	userCreateCmd.Flags().StringVarP(&newPassword, "password", "p", "", "password")
	userCreateCmd.Flags().StringVar(&newRole, "role", db.RoleEditor, "role: admin or editor")
	userCreateCmd.Flags().StringVar(&newName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&newEmail, "email", "", "email address")
	_ = userCreateCmd.MarkFlagRequired("username")
	_ = userCreateCmd.MarkFlagRequired("password")
}
