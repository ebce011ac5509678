// Package yfinance implements the Yahoo Finance statement provider.
// It reads quarterly income statements from the v10 quoteSummary API
// (module incomeStatementHistoryQuarterly).
//
// Yahoo Finance is a free, no-API-key provider.
package yfinance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/revgrowth/internal/infra"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/pkg/models"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

const (
	providerName   = "yfinance"
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	quarterlyIS    = "incomeStatementHistoryQuarterly"
)

// Provider implements provider.StatementFetcher for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// New creates a new YFinance provider. An empty baseURL selects the public API.
func New(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance - free global financial data",
			"https://finance.yahoo.com",
			nil, // no credentials required
		),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// FetchQuarterlyStatements downloads the quarterly income statements for symbol.
func (p *Provider) FetchQuarterlyStatements(ctx context.Context, symbol string) (*models.StatementHistory, error) {
	symbol = utils.NormalizeTicker(symbol)

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		p.baseURL, url.PathEscape(symbol), quarterlyIS)

	var resp yfQuoteSummaryResponse
	if err := fetchJSON(ctx, u, &resp); err != nil {
		var pe *payloadErr
		if errors.As(err, &pe) {
			return nil, provider.NewError(providerName, symbol, provider.KindMalformed, err)
		}
		return nil, provider.WrapError(providerName, symbol, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		kind := provider.KindMalformed
		if strings.EqualFold(e.Code, "Not Found") {
			kind = provider.KindNotFound
		}
		return nil, provider.NewError(providerName, symbol, kind, fmt.Errorf("api error: %s", e.Description))
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, provider.NewError(providerName, symbol, provider.KindEmpty, errors.New("no quoteSummary result"))
	}

	container := resp.QuoteSummary.Result[0].IncomeStatementHistoryQuarterly
	if container == nil || len(container.Statements) == 0 {
		return nil, provider.NewError(providerName, symbol, provider.KindEmpty, errors.New("no quarterly income statements"))
	}

	snapshots := make([]models.Snapshot, 0, len(container.Statements))
	for _, stmt := range container.Statements {
		end, raw, ok := extractDate(stmt)
		if !ok {
			continue
		}
		snapshots = append(snapshots, models.Snapshot{
			EndDate:   end,
			RawDate:   raw,
			LineItems: lineItems(stmt),
		})
	}
	if len(snapshots) == 0 {
		return nil, provider.NewError(providerName, symbol, provider.KindMalformed, errors.New("no statement carried an endDate"))
	}

	return &models.StatementHistory{
		Symbol:    symbol,
		Provider:  providerName,
		Snapshots: snapshots,
	}, nil
}

// --- Shared helpers ---

type payloadErr struct{ err error }

func (e *payloadErr) Error() string { return "parse JSON: " + e.err.Error() }
func (e *payloadErr) Unwrap() error { return e.err }

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fetchJSON performs a GET request and decodes the response into dest.
func fetchJSON(ctx context.Context, url string, dest any) error {
	body, _, err := infra.DoGet(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return &payloadErr{err}
	}
	return nil
}

// extractDate reads endDate from a statement. The formatted date wins since
// it is already the exchange-local calendar day; raw is epoch seconds.
func extractDate(stmt map[string]yfFinVal) (time.Time, string, bool) {
	v, ok := stmt["endDate"]
	if !ok {
		return time.Time{}, "", false
	}
	if v.Fmt != "" {
		if t, err := utils.ParseDate(v.Fmt); err == nil {
			return t, v.Fmt, true
		}
	}
	if v.Raw != nil && *v.Raw > 0 {
		t := utils.NormalizeDate(time.Unix(int64(*v.Raw), 0).UTC())
		return t, utils.FormatDate(t), true
	}
	return time.Time{}, "", false
}

// lineItems turns every numeric statement field except the date bookkeeping
// into a line item. Fields Yahoo sends as {} become null items.
func lineItems(stmt map[string]yfFinVal) models.LineItems {
	items := make(models.LineItems, len(stmt))
	for key, v := range stmt {
		if key == "endDate" || key == "maxAge" || !v.numeric {
			continue
		}
		if v.Raw == nil {
			items[key] = null.Float{}
			continue
		}
		items[key] = null.FloatFrom(*v.Raw)
	}
	return items
}
