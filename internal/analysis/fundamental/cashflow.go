package fundamental

import (
	"context"
	"iter"

	"github.com/seenimoa/fundamentals/internal/provider"
	"github.com/seenimoa/fundamentals/pkg/models"
)

// FreeCashFlowSeries yields one free cash flow record per cash flow
// statement period, oldest first. Free cash flow is operating cash flow
// minus capital expenditures, with the provider's sign convention kept.
//
// A fetch or missing-field error is yielded once and ends the sequence.
func (a *Analyzer) FreeCashFlowSeries(ctx context.Context, symbol string) iter.Seq2[models.CashFlowRecord, error] {
	return func(yield func(models.CashFlowRecord, error) bool) {
		periods, err := a.periods(ctx, symbol, provider.KindCashFlow, a.src.FetchCashFlowStatement)
		if err != nil {
			yield(models.CashFlowRecord{}, err)
			return
		}

		for _, p := range periods {
			operating, err := p.field(provider.FieldOperatingCashFlow)
			if err != nil {
				yield(models.CashFlowRecord{}, err)
				return
			}
			capex, err := p.field(provider.FieldCapitalExpenditures)
			if err != nil {
				yield(models.CashFlowRecord{}, err)
				return
			}
			if !yield(models.NewCashFlowRecord(p.date.Year(), operating, capex), nil) {
				return
			}
		}
	}
}

// Collect drains a series into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
