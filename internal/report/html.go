package report

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"
)

// PageMeta is the context printed in the HTML page header.
type PageMeta struct {
	Title       string
	Cutoff      string
	Provider    string
	GeneratedAt time.Time
	Skipped     []string // symbols that produced no row
}

type htmlCell struct {
	Text  string
	Class string
}

type htmlData struct {
	Title       string
	Cutoff      string
	Provider    string
	GeneratedAt string
	Columns     []string
	Rows        [][]htmlCell
	Skipped     []string
	NoData      string
}

var pageTemplate = template.Must(template.New("report").Parse(ReportTemplate))

// WriteHTML renders the table as a standalone HTML page.
func (t *Table) WriteHTML(w io.Writer, meta PageMeta) error {
	if meta.Title == "" {
		meta.Title = "Revenue Growth Report"
	}
	data := htmlData{
		Title:       meta.Title,
		Cutoff:      meta.Cutoff,
		Provider:    meta.Provider,
		GeneratedAt: meta.GeneratedAt.Format("02 Jan 2006, 15:04 MST"),
		Columns:     t.Columns,
		Skipped:     meta.Skipped,
		NoData:      NoDataMessage,
	}

	growthCol := map[int]bool{}
	for i, c := range t.Columns {
		if c == ColQoQ || c == ColYoY {
			growthCol[i] = true
		}
	}
	for _, rec := range t.Records {
		cells := make([]htmlCell, len(rec))
		for i, text := range rec {
			cells[i] = htmlCell{Text: text}
			if growthCol[i] {
				cells[i].Class = growthClass(text)
			}
		}
		data.Rows = append(data.Rows, cells)
	}

	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("executing template: %w", err)
	}
	return nil
}

func growthClass(s string) string {
	switch {
	case strings.HasPrefix(s, "+"):
		return "pos"
	case strings.HasPrefix(s, "-"):
		return "neg"
	default:
		return "na"
	}
}
