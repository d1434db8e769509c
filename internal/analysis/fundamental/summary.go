package fundamental

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/fundamentals/pkg/models"
	"github.com/seenimoa/fundamentals/pkg/utils"
)

// Summary gathers every metric for one symbol.
type Summary struct {
	Symbol       string                  `json:"symbol"`
	Source       string                  `json:"source"`
	Book         []models.BookRecord     `json:"book"`
	FreeCashFlow []models.CashFlowRecord `json:"free_cashflow"`
	Params       DCFParams               `json:"dcf_params"`
	DCF          float64                 `json:"dcf"`
	FCFGrowthPct *float64                `json:"fcf_growth_pct,omitempty"` // first to last record
}

// Summarize computes the book value series, the free cash flow series and
// the DCF projection concurrently. The first error cancels the other
// fetches and is returned unchanged.
func (a *Analyzer) Summarize(ctx context.Context, symbol string, params DCFParams) (*Summary, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	s := &Summary{
		Symbol: utils.NormalizeTicker(symbol),
		Source: a.src.Info().Name,
		Params: params,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		book, err := Collect(a.BookValueSeries(gctx, symbol))
		s.Book = book
		return err
	})
	g.Go(func() error {
		fcf, err := Collect(a.FreeCashFlowSeries(gctx, symbol))
		s.FreeCashFlow = fcf
		return err
	})
	g.Go(func() error {
		dcf, err := a.ProjectDiscountedCashFlow(gctx, symbol, params.GrowthRate, params.Years, params.DiscountRate)
		s.DCF = dcf
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if n := len(s.FreeCashFlow); n >= 2 && s.FreeCashFlow[0].FreeCashFlow != 0 {
		pct, err := GrowthRate(s.FreeCashFlow[0].FreeCashFlow, s.FreeCashFlow[n-1].FreeCashFlow)
		if err == nil {
			s.FCFGrowthPct = &pct
		}
	}
	return s, nil
}
