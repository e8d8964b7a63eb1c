// Package seedfile reads and writes seed documents for the catalog tables.
//
// A seed document lists records per kind. TOML form:
//
//	[[components]]
//	name = "aws"
//	description = "Amazon Web Services"
//
//	[[roles]]
//	name = "ISSO"
//	description = "Information System Security Officer"
//
// The same structure is accepted as YAML (.yaml, .yml) or JSON (.json).
package seedfile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Supported document formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Entry is one record in a seed document.
type Entry struct {
	Name        string `toml:"name" yaml:"name" json:"name"`
	Description string `toml:"description" yaml:"description" json:"description"`
}

// Document holds seed entries for every kind.
type Document struct {
	Components []Entry `toml:"components,omitempty" yaml:"components,omitempty" json:"components,omitempty"`
	Roles      []Entry `toml:"roles,omitempty" yaml:"roles,omitempty" json:"roles,omitempty"`
}

// Entries returns the entries listed for kind.
func (d *Document) Entries(kind models.Kind) []Entry {
	switch kind.Plural {
	case models.Components.Plural:
		return d.Components
	case models.Roles.Plural:
		return d.Roles
	}
	return nil
}

// SetEntries replaces the entries listed for kind.
func (d *Document) SetEntries(kind models.Kind, entries []Entry) {
	switch kind.Plural {
	case models.Components.Plural:
		d.Components = entries
	case models.Roles.Plural:
		d.Roles = entries
	}
}

// Merge appends other's entries to d.
func (d *Document) Merge(other *Document) {
	d.Components = append(d.Components, other.Components...)
	d.Roles = append(d.Roles, other.Roles...)
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported seed file extension %q (use .toml, .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Decode parses a document in the given format.
func Decode(r io.Reader, format string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed document: %w", err)
	}

	var doc Document
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported seed format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s seed document: %w", format, err)
	}
	return &doc, nil
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *Document, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported seed format %q", format)
	}
}

// Load reads a single seed file, picking the format from its extension.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Expand resolves each pattern (plain paths or doublestar globs such as
// "seeds/**/*.yaml") into a sorted, de-duplicated list of files. A pattern
// that matches nothing is an error.
func Expand(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid seed pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("seed pattern %q matched no files", pattern)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// LoadAll expands patterns and merges every matched document in order.
func LoadAll(patterns ...string) (*Document, []string, error) {
	files, err := Expand(patterns...)
	if err != nil {
		return nil, nil, err
	}

	merged := &Document{}
	for _, path := range files {
		doc, err := Load(path)
		if err != nil {
			return nil, nil, err
		}
		merged.Merge(doc)
	}
	return merged, files, nil
}

// Seeder inserts one seed entry, reporting whether it created a record.
type Seeder interface {
	Seed(ctx context.Context, name, description string) (bool, error)
}

// Result counts the outcome of Apply per kind.
type Result struct {
	Created map[string]int
	Skipped map[string]int
}

// Apply inserts every entry of doc through the seeder registered for its
// kind. Entries whose name already exists are counted as skipped.
func Apply(ctx context.Context, doc *Document, seeders map[string]Seeder) (Result, error) {
	res := Result{Created: map[string]int{}, Skipped: map[string]int{}}

	for _, kind := range models.Kinds() {
		entries := doc.Entries(kind)
		if len(entries) == 0 {
			continue
		}
		seeder, ok := seeders[kind.Plural]
		if !ok {
			return res, fmt.Errorf("no seeder registered for %s", kind.Plural)
		}
		for _, e := range entries {
			created, err := seeder.Seed(ctx, e.Name, e.Description)
			if err != nil {
				return res, fmt.Errorf("seed %s %q: %w", kind.Singular, e.Name, err)
			}
			if created {
				res.Created[kind.Plural]++
			} else {
				res.Skipped[kind.Plural]++
			}
		}
	}
	return res, nil
}
