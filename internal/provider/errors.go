package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/seenimoa/revgrowth/internal/infra"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindTimeout     ErrorKind = "timeout"
	KindHTTP        ErrorKind = "http"
	KindRateLimited ErrorKind = "rate_limited"
	KindNotFound    ErrorKind = "not_found"
	KindEmpty       ErrorKind = "empty"
	KindMalformed   ErrorKind = "malformed"
)

// Error is returned by a StatementFetcher when statements for a symbol
// could not be obtained.
type Error struct {
	Provider string
	Symbol   string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Symbol, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error of an explicit kind.
func NewError(providerName, symbol string, kind ErrorKind, err error) *Error {
	return &Error{Provider: providerName, Symbol: symbol, Kind: kind, Err: err}
}

// WrapError builds an Error whose kind is derived from err with KindOf.
func WrapError(providerName, symbol string, err error) *Error {
	return NewError(providerName, symbol, KindOf(err), err)
}

// KindOf classifies an arbitrary error returned while talking to a provider.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var httpErr *infra.ErrHTTP
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests:
			return KindRateLimited
		case http.StatusNotFound:
			return KindNotFound
		}
		return KindHTTP
	}
	return KindNetwork
}
