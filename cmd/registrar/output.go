package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/nebari-dev/registrar/internal/cliclient"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRecordsTable(w io.Writer, records []cliclient.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", rec.ID, rec.Name, rec.Description)
	}
	return tw.Flush()
}

// printRecords writes records as a table on a terminal and as JSON otherwise,
// or always as JSON when asJSON is set.
func printRecords(w io.Writer, records []cliclient.Record, asJSON bool) error {
	if asJSON || !isTerminal(w) {
		return printJSON(w, records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found")
		return err
	}
	return printRecordsTable(w, records)
}
