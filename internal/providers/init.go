// Package providers initializes and registers all concrete statement
// providers with a provider registry.
package providers

import (
	"fmt"

	"github.com/seenimoa/revgrowth/internal/config"
	"github.com/seenimoa/revgrowth/internal/provider"
	"github.com/seenimoa/revgrowth/internal/providers/fmp"
	"github.com/seenimoa/revgrowth/internal/providers/screener"
	"github.com/seenimoa/revgrowth/internal/providers/yfinance"
)

// NewRegistry builds a registry from cfg. Providers that require API keys
// are only registered when the key is configured. The configured provider
// name becomes the default; naming an unregistered provider is a
// configuration error.
func NewRegistry(cfg config.ProviderConfig) (*provider.Registry, error) {
	reg := provider.NewRegistry()

	// --- FMP (requires API key) ---
	if cfg.FMPAPIKey != "" {
		fp := fmp.New(fmp.WithBaseURL(cfg.FMPBaseURL), fmp.WithLimit(cfg.Limit))
		if err := fp.Init(map[string]string{"api_key": cfg.FMPAPIKey}); err != nil {
			return nil, err
		}
		if err := reg.Register(fp); err != nil {
			return nil, err
		}
	}

	// --- YFinance (free, no API key) ---
	if err := reg.Register(yfinance.New(cfg.YFinanceBaseURL)); err != nil {
		return nil, err
	}

	// --- Screener.in (free, no API key) ---
	if err := reg.Register(screener.New(cfg.ScreenerBaseURL)); err != nil {
		return nil, err
	}

	if cfg.Name != "" {
		if err := reg.SetDefault(cfg.Name); err != nil {
			detail := err
			if cfg.Name == "fmp" {
				detail = fmt.Errorf("%w (set FMP_API_KEY or provider.fmp_api_key)", err)
			}
			return nil, &config.Error{Field: "provider.name", Err: detail}
		}
	}
	return reg, nil
}
