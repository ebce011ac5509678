package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/seenimoa/revgrowth/pkg/utils"
)

// Error is a fatal configuration problem: processing must not start.
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ResolveCutoff returns the cutoff date as a canonical calendar date.
// An inline analysis.cutoff_date wins over the contents of analysis.cutoff_file.
func ResolveCutoff(cfg *Config) (time.Time, error) {
	raw := strings.TrimSpace(cfg.Analysis.CutoffDate)
	field := "analysis.cutoff_date"

	if raw == "" {
		path := cfg.Analysis.CutoffFile
		if path == "" {
			return time.Time{}, &Error{Field: field, Err: errors.New("no cutoff date or cutoff file configured")}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return time.Time{}, &Error{Field: "analysis.cutoff_file", Err: err}
		}
		raw = strings.TrimSpace(string(data))
		field = "analysis.cutoff_file"
	}

	cutoff, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, &Error{Field: field, Err: err}
	}
	return cutoff, nil
}

// ResolveTickers returns the normalized ticker list. An inline
// analysis.tickers list wins over analysis.tickers_file. An empty result is
// a configuration error.
func ResolveTickers(cfg *Config) ([]string, error) {
	var tickers []string

	if len(cfg.Analysis.Tickers) > 0 {
		for _, t := range cfg.Analysis.Tickers {
			tickers = append(tickers, utils.SplitTickers(t)...)
		}
		if len(tickers) == 0 {
			return nil, &Error{Field: "analysis.tickers", Err: errors.New("no tickers listed")}
		}
		return tickers, nil
	}

	path := cfg.Analysis.TickersFile
	if path == "" {
		return nil, &Error{Field: "analysis.tickers", Err: errors.New("no tickers or tickers file configured")}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Field: "analysis.tickers_file", Err: err}
	}
	defer f.Close()

	tickers, err = utils.ParseTickerList(f)
	if err != nil {
		return nil, &Error{Field: "analysis.tickers_file", Err: err}
	}
	if len(tickers) == 0 {
		return nil, &Error{Field: "analysis.tickers_file", Err: fmt.Errorf("%s lists no tickers", path)}
	}
	return tickers, nil
}
