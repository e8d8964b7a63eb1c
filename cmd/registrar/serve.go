package main

import (
	"github.com/nebari-dev/registrar/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveKinds          []string
	serveComponentsPort int
	serveRolesPort      int
	serveSeedFiles      []string
)

// @title Registrar API
// @version 1.0
// @description Catalog services for platform components and job roles
// @host localhost:5001
// @BasePath /
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog services",
	Long: `Start one HTTP listener per resource kind. Both kinds share the
configured database; each listens on its own port.

Examples:
  registrar serve                        # components on 5001, roles on 5002
  registrar serve --kind roles           # roles only
  registrar serve --roles-port 8002      # override a port
  registrar serve --seed 'seeds/**/*.yaml'

Environment variables:
  REGISTRAR_SERVICES_COMPONENTS_PORT   Components port (default: 5001)
  REGISTRAR_SERVICES_ROLES_PORT        Roles port (default: 5002)
  REGISTRAR_DATABASE_DRIVER            Database driver: sqlite, postgres
  REGISTRAR_DATABASE_DSN               Database connection string
  REGISTRAR_EVENTS_TYPE                Event broker: memory, valkey
  REGISTRAR_EVENTS_VALKEY_ADDR         Valkey address for the valkey broker`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringSliceVarP(&serveKinds, "kind", "k", []string{"all"}, "Kinds to serve: components, roles, or all")
	serveCmd.Flags().IntVar(&serveComponentsPort, "components-port", 0, "Components port (overrides config)")
	serveCmd.Flags().IntVar(&serveRolesPort, "roles-port", 0, "Roles port (overrides config)")
	serveCmd.Flags().StringSliceVar(&serveSeedFiles, "seed", nil, "Seed documents or globs to load at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	return server.RunWithSignalHandling(server.Options{
		Kinds: serveKinds,
		Ports: map[string]int{
			"components": serveComponentsPort,
			"roles":      serveRolesPort,
		},
		SeedFiles: serveSeedFiles,
		Version:   Version,
	})
}
