// Package snapshot implements a statement source backed by a JSON file.
// It serves recorded provider data for offline runs and reproducible tests.
//
// File layout:
//
//	{
//	  "AAPL": {
//	    "balance_sheet": {"2023-09-30": {"totalCurrentAssets": 143566000000, ...}},
//	    "cash_flow":     {"2023-09-30": {"totalCashFromOperatingActivities": ..., ...}}
//	  }
//	}
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/seenimoa/fundamentals/internal/provider"
)

const providerName = "snapshot"

type fileSymbol struct {
	BalanceSheet map[string]map[string]float64 `json:"balance_sheet"`
	CashFlow     map[string]map[string]float64 `json:"cash_flow"`
}

// Source reads statements from a snapshot file. The file is re-read on every
// fetch so edits are picked up without a restart.
type Source struct {
	path string
}

// New creates a snapshot source for the file at path.
func New(path string) *Source {
	return &Source{path: path}
}

// Info returns metadata about this source.
func (s *Source) Info() provider.Info {
	return provider.Info{
		Name:        providerName,
		Description: "Recorded statements from " + s.path,
	}
}

// FetchBalanceSheet returns the balance sheet periods recorded for symbol.
func (s *Source) FetchBalanceSheet(ctx context.Context, symbol string) (provider.Statement, error) {
	return s.fetch(ctx, symbol, provider.KindBalanceSheet)
}

// FetchCashFlowStatement returns the cash flow periods recorded for symbol.
func (s *Source) FetchCashFlowStatement(ctx context.Context, symbol string) (provider.Statement, error) {
	return s.fetch(ctx, symbol, provider.KindCashFlow)
}

func (s *Source) fetch(ctx context.Context, symbol string, kind provider.StatementKind) (provider.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, fmt.Errorf("read snapshot: %w", err))
	}
	var file map[string]fileSymbol
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, fmt.Errorf("parse snapshot %s: %w", s.path, err))
	}

	entry, ok := lookup(file, symbol)
	if !ok {
		return nil, provider.Unavailable(providerName, symbol, kind, provider.ErrSymbolNotFound)
	}

	rows := entry.BalanceSheet
	if kind == provider.KindCashFlow {
		rows = entry.CashFlow
	}
	if len(rows) == 0 {
		return nil, provider.Unavailable(providerName, symbol, kind, provider.ErrNoPeriods)
	}

	stmt := make(provider.Statement, len(rows))
	for date, items := range rows {
		period, err := provider.ParsePeriod(date)
		if err != nil {
			return nil, provider.Unavailable(providerName, symbol, kind, err)
		}
		if _, dup := stmt[period]; dup {
			return nil, provider.Unavailable(providerName, symbol, kind, fmt.Errorf("duplicate period %s", date))
		}
		li := make(provider.LineItems, len(items))
		for k, v := range items {
			li[k] = v
		}
		stmt[period] = li
	}
	return stmt, nil
}

// lookup finds symbol in the file, ignoring case of the recorded keys.
func lookup(file map[string]fileSymbol, symbol string) (fileSymbol, bool) {
	if e, ok := file[symbol]; ok {
		return e, true
	}
	for k, e := range file {
		if strings.EqualFold(k, symbol) {
			return e, true
		}
	}
	return fileSymbol{}, false
}
