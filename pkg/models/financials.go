// Package models holds the normalized records produced by the fundamentals
// pipeline.
package models

// BookRecord is the book value of a company for a single reporting period.
// Book is always TotalAssets minus TotalLiabilities; build it with
// NewBookRecord.
type BookRecord struct {
	Year             int     `json:"year"`
	TotalLiabilities float64 `json:"total_liabilities"`
	TotalAssets      float64 `json:"total_assets"`
	Book             float64 `json:"book"`
}

// NewBookRecord derives the book value for a period.
func NewBookRecord(year int, assets, liabilities float64) BookRecord {
	return BookRecord{
		Year:             year,
		TotalLiabilities: liabilities,
		TotalAssets:      assets,
		Book:             assets - liabilities,
	}
}

// CashFlowRecord is the free cash flow of a company for a single reporting period.
type CashFlowRecord struct {
	Year         int     `json:"year"`
	FreeCashFlow float64 `json:"free_cashflow"`
}

// NewCashFlowRecord derives free cash flow as operating cash flow minus
// capital expenditures. The provider's sign convention is kept as-is.
func NewCashFlowRecord(year int, operating, capex float64) CashFlowRecord {
	return CashFlowRecord{
		Year:         year,
		FreeCashFlow: operating - capex,
	}
}
