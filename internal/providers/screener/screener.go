// Package screener implements a statement provider that scrapes the
// quarterly results table from Screener.in company pages. It covers
// NSE/BSE listed companies and needs no API key.
package screener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/guregu/null/v6"

	"github.com/seenimoa/revgrowth/internal/infra"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/pkg/models"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

const (
	providerName   = "screener"
	DefaultBaseURL = "https://www.screener.in"
)

// Provider implements provider.StatementFetcher by scraping Screener.in.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a new Screener.in provider. An empty baseURL selects the live site.
func New(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Screener.in - quarterly results for Indian listed companies",
			DefaultBaseURL,
			nil,
		),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchQuarterlyStatements scrapes the #quarters table for symbol.
func (p *Provider) FetchQuarterlyStatements(ctx context.Context, symbol string) (*models.StatementHistory, error) {
	symbol = utils.NormalizeTicker(symbol)

	doc, err := p.fetchPage(ctx, utils.BaseSymbol(symbol))
	if err != nil {
		return nil, provider.WrapError(providerName, symbol, err)
	}

	snapshots, err := parseQuarterlyTable(doc)
	if err != nil {
		kind := provider.KindMalformed
		if errors.Is(err, errNoQuarters) {
			kind = provider.KindEmpty
		}
		return nil, provider.NewError(providerName, symbol, kind, err)
	}

	return &models.StatementHistory{
		Symbol:    symbol,
		Provider:  providerName,
		Snapshots: snapshots,
	}, nil
}

// --- Internal helpers ---

var errNoQuarters = errors.New("no quarterly results table")

// fetchPage downloads and parses the company page, preferring consolidated
// figures and falling back to standalone.
func (p *Provider) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	headers := map[string]string{"Accept": "text/html"}

	url := fmt.Sprintf("%s/company/%s/consolidated/", p.baseURL, symbol)
	body, _, err := infra.DoGet(ctx, url, headers)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// Try standalone if consolidated not found.
		url = fmt.Sprintf("%s/company/%s/", p.baseURL, symbol)
		body, _, err = infra.DoGet(ctx, url, headers)
		if err != nil {
			return nil, err
		}
	}
	defer body.Close()

	return parseDocument(body)
}

func parseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse screener HTML: %w", err)
	}
	return doc, nil
}

// parseQuarterlyTable turns the #quarters table into one snapshot per
// column. Columns whose header is not a date are dropped.
func parseQuarterlyTable(doc *goquery.Document) ([]models.Snapshot, error) {
	section := doc.Find("#quarters")
	if section.Length() == 0 {
		return nil, errNoQuarters
	}

	// column index (excluding the label column) -> snapshot index
	cols := make(map[int]int)
	var snapshots []models.Snapshot

	section.Find("table thead th").Each(func(i int, th *goquery.Selection) {
		if i == 0 { // skip row label column
			return
		}
		raw := strings.TrimSpace(th.Text())
		end, err := utils.ParseDate(raw)
		if err != nil {
			return
		}
		cols[i-1] = len(snapshots)
		snapshots = append(snapshots, models.Snapshot{
			EndDate:   end,
			RawDate:   raw,
			LineItems: make(models.LineItems),
		})
	})
	if len(snapshots) == 0 {
		return nil, errNoQuarters
	}

	section.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := cleanLabel(row.Find("td:first-child").Text())
		if label == "" {
			return
		}
		percent := strings.HasSuffix(label, "%")
		row.Find("td").Each(func(i int, cell *goquery.Selection) {
			if i == 0 {
				return
			}
			idx, ok := cols[i-1]
			if !ok {
				return
			}
			snapshots[idx].LineItems[label] = parseCell(cell.Text(), percent)
		})
	})

	return snapshots, nil
}

// cleanLabel strips the expand marker ("Sales +") and non-breaking spaces
// Screener.in puts on row labels.
func cleanLabel(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	return s
}

// parseCell converts a table cell, denominated in crores, into rupees. Percentage rows
// are kept as-is. Blank or non-numeric cells are null.
func parseCell(s string, percent bool) null.Float {
	v, ok := parseScreenerNumber(s)
	if !ok {
		return null.Float{}
	}
	if percent {
		return null.FloatFrom(v)
	}
	return null.FloatFrom(utils.FromCrores(v))
}

// parseScreenerNumber parses numbers like "1,234.56", "12%" or "₹ 5 Cr".
// Explicit Cr/L suffixes are converted to units of crores.
func parseScreenerNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.TrimSpace(s)

	multiplier := 1.0
	if strings.HasSuffix(s, "Cr") || strings.HasSuffix(s, "Cr.") {
		s = strings.TrimSuffix(s, "Cr.")
		s = strings.TrimSuffix(s, "Cr")
		s = strings.TrimSpace(s)
	} else if strings.HasSuffix(s, "L") || strings.HasSuffix(s, "Lakh") {
		s = strings.TrimSuffix(s, "Lakh")
		s = strings.TrimSuffix(s, "L")
		s = strings.TrimSpace(s)
		multiplier = utils.ToCrores(utils.FromLakhs(1))
	}
	if s == "" {
		return 0, false
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return val * multiplier, true
}

// Compile-time check.
var _ provider.StatementFetcher = (*Provider)(nil)
