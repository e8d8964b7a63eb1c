package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nebari-dev/registrar/internal/db"
	"github.com/nebari-dev/registrar/internal/seedfile"
	"github.com/nebari-dev/registrar/internal/server"
	"github.com/nebari-dev/registrar/internal/store"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	exportKinds  []string
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump records as a seed document",
	Long: `Write the records of one or both kinds as a seed document that
'registrar seed' can load again.

The format defaults to the extension of --output, or yaml on stdout.`,
	Example: `  registrar export --kind roles
  registrar export -o backup.toml`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVarP(&exportKinds, "kind", "k", []string{"all"}, "Kinds to export: components, roles, or all")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: yaml, toml, json")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := resolveExportFormat(exportFormat, exportOutput)
	if err != nil {
		return err
	}

	database, _, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close(database)

	doc, err := exportDocument(cmd.Context(), database, exportKinds)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return seedfile.Encode(w, doc, format)
}

// resolveExportFormat picks the explicit format, else the output extension, else yaml.
func resolveExportFormat(format, output string) (string, error) {
	switch format {
	case seedfile.FormatYAML, seedfile.FormatTOML, seedfile.FormatJSON:
		return format, nil
	case "yml":
		return seedfile.FormatYAML, nil
	case "":
		if output == "" {
			return seedfile.FormatYAML, nil
		}
		return seedfile.FormatFromPath(output)
	default:
		return "", fmt.Errorf("unsupported format %q (use yaml, toml or json)", format)
	}
}

// exportDocument reads every record of the named kinds into a seed document.
func exportDocument(ctx context.Context, database *gorm.DB, names []string) (*seedfile.Document, error) {
	kinds, err := server.ResolveKinds(names)
	if err != nil {
		return nil, err
	}

	doc := &seedfile.Document{}
	for _, kind := range kinds {
		records, err := store.New(database, kind).List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", kind.Plural, err)
		}
		entries := make([]seedfile.Entry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, seedfile.Entry{Name: rec.Name, Description: rec.Description})
		}
		doc.SetEntries(kind, entries)
	}
	return doc, nil
}
