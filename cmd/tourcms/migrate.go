package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, gdb, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(gdb)
		log.Info("database migrated")
		fmt.Fprintln(cmd.OutOrStdout(), "migration complete")
		return nil
	},
}
