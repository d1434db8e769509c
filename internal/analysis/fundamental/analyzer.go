// Package fundamental turns raw provider statements into yearly book value
// and free cash flow records and projects a discounted cash flow from them.
//
// Series are lazy: nothing is fetched until a sequence is ranged over, and
// every range performs a fresh fetch. Results are never cached.
package fundamental

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fundamentals/internal/provider"
	"github.com/seenimoa/fundamentals/pkg/utils"
)

// Analyzer computes valuation metrics from a single statement source.
type Analyzer struct {
	src provider.Source
	log zerolog.Logger
}

// NewAnalyzer creates an Analyzer reading from src.
func NewAnalyzer(src provider.Source, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		src: src,
		log: log.With().Str("component", "fundamental").Logger(),
	}
}

// Source returns the statement source the analyzer reads from.
func (a *Analyzer) Source() provider.Source {
	return a.src
}

// fetchFunc is one of the Source fetch methods.
type fetchFunc func(ctx context.Context, symbol string) (provider.Statement, error)

// periods fetches a statement and returns its periods oldest first.
func (a *Analyzer) periods(ctx context.Context, symbol string, kind provider.StatementKind, fetch fetchFunc) ([]period, error) {
	symbol = utils.NormalizeTicker(symbol)
	a.log.Debug().Str("symbol", symbol).Str("statement", string(kind)).Msg("fetching statement")

	stmt, err := fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	dates := stmt.Periods()
	out := make([]period, 0, len(dates))
	for _, d := range dates {
		out = append(out, period{symbol: symbol, date: d, items: stmt[d]})
	}

	a.log.Debug().Str("symbol", symbol).Str("statement", string(kind)).Int("periods", len(out)).Msg("statement fetched")
	return out, nil
}

type period struct {
	symbol string
	date   time.Time
	items  provider.LineItems
}

// field returns a required line item or an *ErrMissingField.
func (p period) field(name string) (float64, error) {
	v, ok := p.items[name]
	if !ok {
		return 0, &ErrMissingField{Symbol: p.symbol, Period: p.date, Field: name}
	}
	return v, nil
}
