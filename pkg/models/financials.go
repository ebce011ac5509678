// Package models defines the statement, window and report types shared
// across revgrowth.
package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// WindowSize is the number of trailing quarters examined per ticker.
// Index 0 is the latest quarter, index 1 the one before it, index 4 the
// same quarter one year earlier.
const WindowSize = 5

// LineItems maps a statement line-item name (as the provider spells it)
// to its value. A null value means the provider reported the item without
// a usable number.
type LineItems map[string]null.Float

// Snapshot is one quarterly income statement as returned by a provider.
type Snapshot struct {
	EndDate   time.Time `json:"end_date"` // canonical calendar date, midnight UTC
	RawDate   string    `json:"raw_date"` // date exactly as the provider sent it
	LineItems LineItems `json:"line_items"`
}

// StatementHistory is every quarterly snapshot a provider returned for a
// symbol. Snapshots are in provider order; nothing is sorted or deduplicated.
type StatementHistory struct {
	Symbol    string     `json:"symbol"`
	Provider  string     `json:"provider"`
	Snapshots []Snapshot `json:"snapshots"`
}

// Period is a quarter end date paired with its revenue, if any.
type Period struct {
	EndDate time.Time  `json:"end_date"`
	Revenue null.Float `json:"revenue"`
}

// Slot is one position of a Window. Present is false when the trailing
// quarter at that index does not exist in the history.
type Slot struct {
	Present bool
	Period  Period
}

// Revenue returns the slot's revenue, or a null value when the slot is absent.
func (s Slot) Revenue() null.Float {
	if !s.Present {
		return null.Float{}
	}
	return s.Period.Revenue
}

// Window is the fixed-length trailing slice of a ticker's history,
// most recent first.
type Window [WindowSize]Slot

// Empty reports whether no position of the window is populated.
func (w Window) Empty() bool {
	return !w[0].Present
}

// Len returns the number of populated positions.
func (w Window) Len() int {
	n := 0
	for _, s := range w {
		if s.Present {
			n++
		}
	}
	return n
}

// HasLatestRevenue reports whether the latest position is populated and
// carries a revenue value.
func (w Window) HasLatestRevenue() bool {
	return w[0].Revenue().Valid
}

// GrowthResult holds the growth figures derived from one window.
type GrowthResult struct {
	QoQ Growth `json:"qoq"`
	YoY Growth `json:"yoy"`
}

// ReportRow is one ticker's line in the growth report. Revenues and
// QuarterDates are indexed by trailing quarter (0 = latest).
type ReportRow struct {
	Symbol       string        `json:"symbol"`
	ReportDate   string        `json:"report_date"`
	Revenues     [4]null.Float `json:"revenues"`
	QuarterDates [4]string     `json:"quarter_dates"`
	QoQ          Growth        `json:"qoq"`
	YoY          Growth        `json:"yoy"`
}
