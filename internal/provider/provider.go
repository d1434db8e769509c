// Package provider defines the narrow statement-source abstraction the
// fundamentals pipeline reads from, plus a registry of named sources.
//
// A Source returns raw statements keyed by period-end date. Everything a
// source returns is treated as read-only by its callers.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Info holds metadata about a registered source.
type Info struct {
	Name        string `json:"name"`        // e.g., "yfinance", "snapshot"
	Description string `json:"description"` // human-readable description
	Website     string `json:"website,omitempty"`
}

// Source is the interface that all statement providers must implement.
type Source interface {
	// Info returns metadata about this source.
	Info() Info

	// FetchBalanceSheet returns the balance sheet periods for symbol.
	FetchBalanceSheet(ctx context.Context, symbol string) (Statement, error)

	// FetchCashFlowStatement returns the cash flow statement periods for symbol.
	FetchCashFlowStatement(ctx context.Context, symbol string) (Statement, error)
}

// StatementKind names a financial statement.
type StatementKind string

const (
	KindBalanceSheet StatementKind = "balance sheet"
	KindCashFlow     StatementKind = "cash flow statement"
)

// Line item keys the pipeline reads.
const (
	FieldTotalCurrentAssets      = "totalCurrentAssets"
	FieldTotalCurrentLiabilities = "totalCurrentLiabilities"
	FieldOperatingCashFlow       = "totalCashFromOperatingActivities"
	FieldCapitalExpenditures     = "capitalExpenditures"
)

// ErrSymbolNotFound is wrapped by ErrDataUnavailable when the provider cannot
// resolve the symbol at all.
var ErrSymbolNotFound = errors.New("symbol not found")

// ErrNoPeriods is wrapped by ErrDataUnavailable when the provider resolved the
// symbol but returned no reporting periods.
var ErrNoPeriods = errors.New("no reporting periods")

// ErrDataUnavailable is returned when a statement cannot be obtained from a
// source: the provider is unreachable, the symbol is unknown, or the
// statement is empty.
type ErrDataUnavailable struct {
	Provider  string
	Symbol    string
	Statement StatementKind
	Err       error
}

func (e *ErrDataUnavailable) Error() string {
	return fmt.Sprintf("%s: %s for %s unavailable: %v", e.Provider, e.Statement, e.Symbol, e.Err)
}

func (e *ErrDataUnavailable) Unwrap() error { return e.Err }

// Unavailable builds an *ErrDataUnavailable.
func Unavailable(source, symbol string, kind StatementKind, err error) error {
	return &ErrDataUnavailable{Provider: source, Symbol: symbol, Statement: kind, Err: err}
}

// ErrSourceNotFound is returned when a requested source is not registered.
type ErrSourceNotFound struct {
	Name string
}

func (e *ErrSourceNotFound) Error() string {
	return fmt.Sprintf("source %q not found", e.Name)
}
