// Package fundamental implements the revenue growth core: picking revenue
// out of a statement snapshot, aligning a ticker's quarterly history to a
// cutoff date and computing QoQ / YoY growth over the trailing window.
package fundamental

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/guregu/null/v6"

	"github.com/seenimoa/revgrowth/pkg/models"
)

// RevenueAliases lists the line-item names accepted as revenue, highest
// priority first. Names are compared after normalizeKey, so "Total Revenue",
// "totalRevenue" and "total_revenue" are the same key.
var RevenueAliases = []string{
	"Total Revenue",
	"Operating Revenue",
	"Revenue",
	"Revenues",
	"Revenue From Operations",
	"Net Sales",
	"Sales",
}

// ExtractRevenue returns the revenue figure of a snapshot using RevenueAliases.
func ExtractRevenue(items models.LineItems) null.Float {
	return ExtractRevenueWith(items, RevenueAliases)
}

// ExtractRevenueWith returns the value of the first alias that resolves to a
// usable number. Aliases present with a null or non-finite value are skipped.
// The result is null when no alias matches.
func ExtractRevenueWith(items models.LineItems, aliases []string) null.Float {
	if len(items) == 0 {
		return null.Float{}
	}

	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, alias := range aliases {
		if v, ok := items[alias]; ok && usable(v) {
			return v
		}
		want := normalizeKey(alias)
		for _, k := range keys {
			if normalizeKey(k) == want && usable(items[k]) {
				return items[k]
			}
		}
	}
	return null.Float{}
}

func usable(v null.Float) bool {
	return v.Valid && !math.IsNaN(v.Float64) && !math.IsInf(v.Float64, 0)
}

// normalizeKey lowercases and drops everything but letters and digits.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
