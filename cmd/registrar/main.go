package main

import (
	"os"

	"github.com/spf13/cobra"

	_ "github.com/nebari-dev/registrar/docs" // Load swagger docs
)

// Version is set via ldflags at build time
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "registrar",
	Short: "Registrar - catalog services for platform components and roles",
	Long: `Registrar runs the components and roles catalog services and talks to
running instances of them.`,
	Example: `  # Run both services with the default ports (5001, 5002)
  registrar serve

  # Load a seed document, then list what a running service holds
  registrar seed seeds/catalog.yaml
  registrar components list

  # Add a role through the API
  registrar roles create ISSO "Information System Security Officer"`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "server", Title: "Server Commands:"},
		&cobra.Group{ID: "client", Title: "Client Commands:"},
	)

	serveCmd.GroupID = "server"
	migrateCmd.GroupID = "server"
	seedCmd.GroupID = "server"
	exportCmd.GroupID = "server"

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	for _, cmd := range resourceCommands() {
		cmd.GroupID = "client"
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
