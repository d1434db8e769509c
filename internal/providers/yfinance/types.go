package yfinance

import "encoding/json"

// --- Yahoo Finance API response types ---

// yfQuoteSummaryResponse wraps the v10 quoteSummary API response.
type yfQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []yfQuoteSummaryResult `json:"result"`
		Error  *yfError               `json:"error"`
	} `json:"quoteSummary"`
}

type yfQuoteSummaryResult struct {
	BalanceSheetHistory      *yfBalanceSheetHistory `json:"balanceSheetHistory"`
	CashflowStatementHistory *yfCashflowHistory     `json:"cashflowStatementHistory"`
}

// Statement rows are kept raw: besides {raw, fmt} objects they carry
// plain numbers such as maxAge, and empty objects for unreported items.
type yfBalanceSheetHistory struct {
	Statements []map[string]json.RawMessage `json:"balanceSheetStatements"`
}

type yfCashflowHistory struct {
	Statements []map[string]json.RawMessage `json:"cashflowStatements"`
}

type yfFinVal struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
