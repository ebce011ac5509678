// Package report turns growth rows into the tabular report: a CSV export,
// a markdown preview for the console and an HTML page.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/revgrowth/pkg/models"
)

// Fixed column labels. These are present in every table regardless of how
// much history a ticker had.
const (
	ColSymbol     = "Symbol"
	ColReportDate = "Report_Date"
	ColRevLatest  = "Rev_Latest"
	ColQoQ        = "QoQ"
	ColYoY        = "YoY"
)

// NoDataMessage is the preview shown when the report has no rows.
const NoDataMessage = "No data: no ticker produced a report row."

// trailingLabel names the revenue column of trailing quarter i (1..3).
func trailingLabel(i int) string {
	return fmt.Sprintf("Rev_Q-%d", i)
}

// datedLabel embeds the quarter's date in the trailing column label.
func datedLabel(i int, date string) string {
	return fmt.Sprintf("%s (%s)", trailingLabel(i), date)
}

// Options controls table layout.
type Options struct {
	DatedLabels bool  // embed each trailing quarter's date in its column label
	Decimals    int32 // fractional digits of revenue cells
}

// Table is a rendered report: column labels plus one string record per row.
type Table struct {
	Columns []string
	Records [][]string
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.Records) == 0 }

// Aggregator collects report rows in the order they are added.
type Aggregator struct {
	rows []models.ReportRow
}

// NewAggregator creates an Aggregator seeded with rows.
func NewAggregator(rows ...models.ReportRow) *Aggregator {
	a := &Aggregator{}
	a.Add(rows...)
	return a
}

// Add appends rows.
func (a *Aggregator) Add(rows ...models.ReportRow) {
	a.rows = append(a.rows, rows...)
}

// Len returns the number of collected rows.
func (a *Aggregator) Len() int { return len(a.rows) }

// Rows returns a copy of the collected rows.
func (a *Aggregator) Rows() []models.ReportRow {
	return append([]models.ReportRow(nil), a.rows...)
}

// Table lays the collected rows out as a table. With zero rows the table
// still carries the fixed column set.
func (a *Aggregator) Table(opts Options) *Table {
	if !opts.DatedLabels {
		return a.fixedTable(opts)
	}
	return a.datedTable(opts)
}

func (a *Aggregator) fixedTable(opts Options) *Table {
	t := &Table{Columns: []string{ColSymbol, ColReportDate, ColRevLatest}}
	for i := 1; i < 4; i++ {
		t.Columns = append(t.Columns, trailingLabel(i))
	}
	t.Columns = append(t.Columns, ColQoQ, ColYoY)

	for _, row := range a.rows {
		rec := []string{row.Symbol, row.ReportDate}
		for _, v := range row.Revenues {
			rec = append(rec, FormatRevenue(v, opts.Decimals))
		}
		rec = append(rec, row.QoQ.String(), row.YoY.String())
		t.Records = append(t.Records, rec)
	}
	return t
}

// datedTable unions the dated trailing labels of all rows in first-seen
// order. A row leaves the cells of other rows' dates empty.
func (a *Aggregator) datedTable(opts Options) *Table {
	if len(a.rows) == 0 {
		return a.fixedTable(opts)
	}

	var dated []string
	index := make(map[string]int)
	for _, row := range a.rows {
		for i := 1; i < 4; i++ {
			label := datedLabel(i, row.QuarterDates[i])
			if _, ok := index[label]; !ok {
				index[label] = len(dated)
				dated = append(dated, label)
			}
		}
	}

	t := &Table{Columns: []string{ColSymbol, ColReportDate, ColRevLatest}}
	t.Columns = append(t.Columns, dated...)
	t.Columns = append(t.Columns, ColQoQ, ColYoY)

	for _, row := range a.rows {
		cells := make([]string, len(dated))
		for i := 1; i < 4; i++ {
			cells[index[datedLabel(i, row.QuarterDates[i])]] = FormatRevenue(row.Revenues[i], opts.Decimals)
		}
		rec := []string{row.Symbol, row.ReportDate, FormatRevenue(row.Revenues[0], opts.Decimals)}
		rec = append(rec, cells...)
		rec = append(rec, row.QoQ.String(), row.YoY.String())
		t.Records = append(t.Records, rec)
	}
	return t
}

// FormatRevenue renders a revenue value as a plain decimal with the given
// number of fractional digits: no exponent, no thousands separators.
// Absent values render as an empty cell.
func FormatRevenue(v null.Float, decimals int32) string {
	if !v.Valid {
		return ""
	}
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(decimals)
}

// WriteCSV writes the table as comma separated values with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Records); err != nil {
		return fmt.Errorf("write csv records: %w", err)
	}
	return nil
}

// WriteCSVFile writes the table to path, creating parent directories.
func (t *Table) WriteCSVFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Markdown renders the table as a markdown pipe table for console preview.
// An empty table renders as NoDataMessage.
func (t *Table) Markdown() string {
	if t.Empty() {
		return NoDataMessage + "\n"
	}

	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c)
	}
	for _, rec := range t.Records {
		for i, cell := range rec {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, cell := range cells {
			sb.WriteString(" " + cell + strings.Repeat(" ", widths[i]-len(cell)) + " |")
		}
		sb.WriteString("\n")
	}

	writeRow(t.Columns)
	sb.WriteString("|")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2) + "|")
	}
	sb.WriteString("\n")
	for _, rec := range t.Records {
		writeRow(rec)
	}
	return sb.String()
}
