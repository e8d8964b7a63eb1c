// Package web holds the server-rendered page served at "/" by each service.
package web

import (
	"embed"
	"html/template"

	"github.com/nebari-dev/registrar/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// IndexTemplate is the name the index page is rendered under.
const IndexTemplate = "index.html"

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// IndexPage is the data rendered by the index template.
type IndexPage struct {
	Title       string
	Empty       string
	Error       string
	Name        string
	Description string
	Records     []models.Record
}

// NewIndexPage builds the page for kind listing records.
func NewIndexPage(kind models.Kind, records []models.Record) IndexPage {
	return IndexPage{
		Title:   "All " + kind.TitlePlural(),
		Empty:   "No " + kind.Plural + "!",
		Records: records,
	}
}
