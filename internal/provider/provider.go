// Package provider defines the statement provider abstraction: a
// StatementFetcher returns a ticker's quarterly income statements, and a
// Registry maps provider names to configured fetchers.
package provider

import (
	"context"
	"fmt"

	"github.com/seenimoa/revgrowth/pkg/models"
)

// ProviderCredential describes a required credential for a provider.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // e.g., "FMP API key from financialmodelingprep.com"
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "FMP_API_KEY"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`        // e.g., "fmp", "screener"
	Description string               `json:"description"` // human-readable description
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
}

// StatementFetcher is the interface every statement provider implements.
type StatementFetcher interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// FetchQuarterlyStatements returns the quarterly income statements the
	// provider knows for symbol. Snapshots come back in provider order.
	// Failures are reported as *Error.
	FetchQuarterlyStatements(ctx context.Context, symbol string) (*models.StatementHistory, error)
}

// BaseProvider carries the metadata and credential handling shared by
// concrete providers. Embed it and implement FetchQuarterlyStatements.
type BaseProvider struct {
	info        ProviderInfo
	credentials map[string]string
}

// NewBaseProvider creates a base provider.
func NewBaseProvider(name, description, website string, creds []ProviderCredential) BaseProvider {
	return BaseProvider{
		info: ProviderInfo{
			Name:        name,
			Description: description,
			Website:     website,
			Credentials: creds,
		},
		credentials: make(map[string]string),
	}
}

func (bp *BaseProvider) Info() ProviderInfo { return bp.info }

// Init validates and stores credentials.
func (bp *BaseProvider) Init(credentials map[string]string) error {
	for _, cred := range bp.info.Credentials {
		if cred.Required {
			val, ok := credentials[cred.Name]
			if !ok || val == "" {
				return &ErrInvalidCredentials{
					Provider: bp.info.Name,
					Detail:   "missing required credential: " + cred.Name,
				}
			}
		}
	}
	bp.credentials = credentials
	return nil
}

// Credential returns a stored credential value.
func (bp *BaseProvider) Credential(name string) string {
	return bp.credentials[name]
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}
