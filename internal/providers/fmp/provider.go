// Package fmp implements the Financial Modeling Prep (FMP) statement provider.
// FMP serves quarterly income statements as a JSON array via a REST API with
// API key authentication.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/tidwall/gjson"

	"github.com/seenimoa/revgrowth/internal/infra"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/pkg/models"
	"github.com/seenimoa/revgrowth/pkg/utils"
)

const (
	providerName   = "fmp"
	DefaultBaseURL = "https://financialmodelingprep.com/api/v3"
	DefaultLimit   = 8
	credAPIKey     = "api_key"
)

// Provider implements provider.StatementFetcher for FMP.
type Provider struct {
	provider.BaseProvider
	apiKey  string
	baseURL string
	limit   int
}

// Option customizes a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different API root.
func WithBaseURL(u string) Option {
	return func(p *Provider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithLimit sets how many quarters are requested per symbol.
func WithLimit(n int) Option {
	return func(p *Provider) {
		if n > 0 {
			p.limit = n
		}
	}
}

// New creates a new FMP provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Financial Modeling Prep - quarterly income statements",
			"https://financialmodelingprep.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "FMP API key from financialmodelingprep.com",
					Required:    true,
					EnvVar:      "FMP_API_KEY",
				},
			},
		),
		baseURL: DefaultBaseURL,
		limit:   DefaultLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init stores the API key.
func (p *Provider) Init(credentials map[string]string) error {
	if err := p.BaseProvider.Init(credentials); err != nil {
		return err
	}
	p.apiKey = credentials[credAPIKey]
	return nil
}

// APIKey returns the stored API key.
func (p *Provider) APIKey() string {
	return p.apiKey
}

// FetchQuarterlyStatements downloads the quarterly income statements for symbol.
func (p *Provider) FetchQuarterlyStatements(ctx context.Context, symbol string) (*models.StatementHistory, error) {
	symbol = utils.NormalizeTicker(symbol)

	path := fmt.Sprintf("/income-statement/%s?period=quarter&limit=%d", url.PathEscape(symbol), p.limit)
	body, _, err := infra.DoGet(ctx, fmpURL(p.baseURL, path, p.apiKey), jsonHeaders())
	if err != nil {
		return nil, provider.WrapError(providerName, symbol, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, provider.NewError(providerName, symbol, provider.KindNetwork, fmt.Errorf("read response: %w", err))
	}

	snapshots, perr := parseIncomeStatements(data)
	if perr != nil {
		return nil, perr.withSymbol(symbol)
	}

	return &models.StatementHistory{
		Symbol:    symbol,
		Provider:  providerName,
		Snapshots: snapshots,
	}, nil
}

// payloadError is a parse failure that still needs its symbol attached.
type payloadError struct {
	kind provider.ErrorKind
	err  error
}

func (e *payloadError) withSymbol(symbol string) *provider.Error {
	return provider.NewError(providerName, symbol, e.kind, e.err)
}

// parseIncomeStatements turns an FMP income-statement payload into snapshots.
// Every numeric or null field of a statement becomes a line item; elements
// without a parseable "date" are dropped.
func parseIncomeStatements(data []byte) ([]models.Snapshot, *payloadError) {
	if !gjson.ValidBytes(data) {
		return nil, &payloadError{provider.KindMalformed, errors.New("response is not valid JSON")}
	}

	root := gjson.ParseBytes(data)
	if msg := root.Get(`Error Message`); msg.Exists() {
		kind := provider.KindMalformed
		if strings.Contains(strings.ToLower(msg.String()), "limit") {
			kind = provider.KindRateLimited
		}
		return nil, &payloadError{kind, fmt.Errorf("api error: %s", msg.String())}
	}
	if !root.IsArray() {
		return nil, &payloadError{provider.KindMalformed, fmt.Errorf("unexpected %s payload, want array", root.Type)}
	}

	elems := root.Array()
	if len(elems) == 0 {
		return nil, &payloadError{provider.KindEmpty, errors.New("no income statements returned")}
	}

	snapshots := make([]models.Snapshot, 0, len(elems))
	for _, el := range elems {
		raw := el.Get("date").String()
		end, err := utils.ParseDate(raw)
		if err != nil {
			continue
		}
		snapshots = append(snapshots, models.Snapshot{
			EndDate:   end,
			RawDate:   raw,
			LineItems: lineItems(el),
		})
	}
	if len(snapshots) == 0 {
		return nil, &payloadError{provider.KindMalformed, errors.New("no statement carried a usable date")}
	}
	return snapshots, nil
}

// lineItems collects the numeric fields of one statement object. Numeric
// strings are accepted; JSON null is kept as a null line item.
func lineItems(obj gjson.Result) models.LineItems {
	items := make(models.LineItems)
	obj.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.Number:
			items[key.String()] = null.NewFloat(value.Float(), true)
		case gjson.Null:
			items[key.String()] = null.NewFloat(0, false)
		case gjson.String:
			if f, err := strconv.ParseFloat(strings.TrimSpace(value.Str), 64); err == nil {
				items[key.String()] = null.NewFloat(f, true)
			}
		}
		return true
	})
	return items
}

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fmpURL builds a full FMP API URL with the API key appended.
func fmpURL(base, path, apiKey string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return base + path + sep + "apikey=" + url.QueryEscape(apiKey)
}
