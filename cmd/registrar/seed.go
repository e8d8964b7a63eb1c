package main

import (
	"fmt"

	"github.com/nebari-dev/registrar/internal/db"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/nebari-dev/registrar/internal/server"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file-or-glob>...",
	Short: "Load seed documents into the database",
	Long: `Insert the records listed in TOML, YAML or JSON seed documents.
Names that already exist are skipped, so seeding twice is harmless.

Globs may use ** to match nested directories.`,
	Example: `  registrar seed catalog.toml
  registrar seed 'seeds/**/*.yaml'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, _, err := openDatabase()
		if err != nil {
			return err
		}
		defer db.Close(database)

		res, err := server.Seed(cmd.Context(), database, nil, args...)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, kind := range models.Kinds() {
			fmt.Fprintf(out, "%s: %d created, %d skipped\n",
				kind.Plural, res.Created[kind.Plural], res.Skipped[kind.Plural])
		}
		return nil
	},
}
