package yfinance

import (
	"bytes"
	"encoding/json"
)

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	IncomeStatementHistoryQuarterly *yfStatementContainer `json:"incomeStatementHistoryQuarterly"`
}

type yfStatementContainer struct {
	Statements []map[string]yfFinVal `json:"incomeStatementHistory,omitempty"`
}

// yfFinVal is Yahoo's {raw, fmt} number wrapper. Missing values arrive as
// an empty object, which leaves Raw nil. Statements also carry bare numbers
// (maxAge) and the odd string or null; numbers land in Raw, the rest leave
// numeric false.
type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`

	numeric bool // object wrapper or bare number
}

func (v *yfFinVal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] != '{' {
		var f float64
		if err := json.Unmarshal(data, &f); err == nil {
			*v = yfFinVal{Raw: &f, numeric: true}
		}
		return nil
	}

	type wrapper yfFinVal
	var w wrapper
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = yfFinVal(w)
	v.numeric = true
	return nil
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
