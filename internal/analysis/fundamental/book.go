package fundamental

import (
	"context"
	"iter"

	"github.com/seenimoa/fundamentals/internal/provider"
	"github.com/seenimoa/fundamentals/pkg/models"
)

// BookValueSeries yields one book value record per balance sheet period,
// oldest first. Book value is total current assets minus total current
// liabilities.
//
// A fetch or missing-field error is yielded once and ends the sequence.
func (a *Analyzer) BookValueSeries(ctx context.Context, symbol string) iter.Seq2[models.BookRecord, error] {
	return func(yield func(models.BookRecord, error) bool) {
		periods, err := a.periods(ctx, symbol, provider.KindBalanceSheet, a.src.FetchBalanceSheet)
		if err != nil {
			yield(models.BookRecord{}, err)
			return
		}

		for _, p := range periods {
			assets, err := p.field(provider.FieldTotalCurrentAssets)
			if err != nil {
				yield(models.BookRecord{}, err)
				return
			}
			liabilities, err := p.field(provider.FieldTotalCurrentLiabilities)
			if err != nil {
				yield(models.BookRecord{}, err)
				return
			}
			if !yield(models.NewBookRecord(p.date.Year(), assets, liabilities), nil) {
				return
			}
		}
	}
}
