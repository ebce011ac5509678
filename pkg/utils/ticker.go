package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// NormalizeTicker trims whitespace, drops a leading "$" and uppercases.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// BaseSymbol strips a Yahoo-style exchange suffix (.NS, .BO) so the symbol
// can be used with sources that key on the bare exchange code.
func BaseSymbol(ticker string) string {
	ticker = NormalizeTicker(ticker)
	ticker = strings.TrimSuffix(ticker, ".NS")
	return strings.TrimSuffix(ticker, ".BO")
}

// ParseTickerList reads one symbol per line. Blank lines and lines starting
// with "#" are skipped; order and duplicates are preserved.
func ParseTickerList(r io.Reader) ([]string, error) {
	var tickers []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tickers = append(tickers, NormalizeTicker(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ticker list: %w", err)
	}
	return tickers, nil
}

// SplitTickers splits a comma separated symbol list, normalizing each entry
// and dropping empties.
func SplitTickers(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := NormalizeTicker(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
