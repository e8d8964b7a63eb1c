package main

import (
	"fmt"
	"strings"

	"github.com/nebari-dev/registrar/internal/cliclient"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/spf13/cobra"
)

// resourceCommands returns one client command tree per resource kind.
func resourceCommands() []*cobra.Command {
	var cmds []*cobra.Command
	for _, kind := range models.Kinds() {
		cmds = append(cmds, newResourceCmd(kind))
	}
	return cmds
}

// newResourceCmd builds the ping/list/get/create commands for kind.
func newResourceCmd(kind models.Kind) *cobra.Command {
	var (
		baseURL string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:     kind.Plural,
		Aliases: []string{kind.Singular},
		Short:   fmt.Sprintf("Query a running %s service", kind.Plural),
		Long: fmt.Sprintf(`Query a running %[1]s service.

The service URL comes from --url, then REGISTRAR_%[2]s_URL, then the
%[1]s_url key of the CLI config file, then %[3]s.`,
			kind.Plural, strings.ToUpper(kind.Plural), defaultURLs[kind.Plural]),
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", "", "Base URL of the service")

	client := func() (*cliclient.Client, error) {
		u, err := serviceURL(kind, baseURL)
		if err != nil {
			return nil, err
		}
		return cliclient.New(u, kind), nil
	}

	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			msg, err := c.Ping(cmd.Context())
			if err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List all %s", kind.Plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			records, err := c.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", kind.Plural, err)
			}
			return printRecords(cmd.OutOrStdout(), records, asJSON)
		},
	}
	listCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON even on a terminal")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", kind.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			rec, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), []cliclient.Record{*rec}, asJSON)
		},
	}
	getCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON even on a terminal")

	createCmd := &cobra.Command{
		Use:     "create <name> <description>",
		Short:   fmt.Sprintf("Add a %s", kind.Singular),
		Args:    cobra.ExactArgs(2),
		Example: fmt.Sprintf("  registrar %s create %s", kind.Plural, exampleArgs(kind)),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			msg, err := c.Create(cmd.Context(), cliclient.CreateRequest{Name: args[0], Description: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.AddCommand(pingCmd, listCmd, getCmd, createCmd)
	return cmd
}

func exampleArgs(kind models.Kind) string {
	if kind.Plural == models.Roles.Plural {
		return `ISSO "Information System Security Officer"`
	}
	return `aws "Amazon Web Services"`
}
