package main

import (
	"fmt"

	"github.com/nebari-dev/registrar/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close(database)

		fmt.Fprintln(cmd.OutOrStdout(), "Migrations complete")
		return nil
	},
}
