package fundamental

import (
	"context"
	"fmt"
	"math"

	"github.com/seenimoa/fundamentals/pkg/utils"
)

// DCFParams holds the parameters of a discounted cash flow projection.
type DCFParams struct {
	GrowthRate   float64 `json:"growth_rate"`   // decimal, 0.05 = 5%
	Years        int     `json:"years"`         // projection horizon, at least 1
	DiscountRate float64 `json:"discount_rate"` // flat annual rate, decimal
}

// Validate checks the parameters before any data is fetched.
func (p DCFParams) Validate() error {
	if p.Years < 1 {
		return &ErrInvalidParameter{Name: "years", Value: p.Years, Reason: "must be at least 1"}
	}
	if math.IsNaN(p.GrowthRate) || math.IsInf(p.GrowthRate, 0) {
		return &ErrInvalidParameter{Name: "growth rate", Value: p.GrowthRate, Reason: "must be finite"}
	}
	if math.IsNaN(p.DiscountRate) || math.IsInf(p.DiscountRate, 0) {
		return &ErrInvalidParameter{Name: "discount rate", Value: p.DiscountRate, Reason: "must be finite"}
	}
	if p.DiscountRate <= -1 {
		return &ErrInvalidParameter{Name: "discount rate", Value: p.DiscountRate, Reason: "must be greater than -1"}
	}
	return nil
}

// DiscountedCashFlow projects base over years periods and returns the sum
// rounded half to even:
//
//	sum over i in 1..years of  base + base*growth*i / (1+discount)^i
//
// The growth term is linear in i and only the growth term is discounted.
// A sum that overflows float64 is reported as *ErrInvalidParameter.
func DiscountedCashFlow(base, growth float64, years int, discount float64) (float64, error) {
	if err := (DCFParams{GrowthRate: growth, Years: years, DiscountRate: discount}).Validate(); err != nil {
		return 0, err
	}

	total := 0.0
	for i := 1; i <= years; i++ {
		n := float64(i)
		total += base + (base*growth*n)/math.Pow(1+discount, n)
	}
	if math.IsInf(total, 0) || math.IsNaN(total) {
		return 0, &ErrInvalidParameter{
			Name:   "projection",
			Value:  total,
			Reason: fmt.Sprintf("not finite for base %v, growth %v, %d years, discount %v", base, growth, years, discount),
		}
	}
	return math.RoundToEven(total), nil
}

// ProjectDiscountedCashFlow projects the most recent free cash flow of symbol.
// Parameters are checked before the cash flow statement is fetched.
func (a *Analyzer) ProjectDiscountedCashFlow(ctx context.Context, symbol string, growthRate float64, years int, discountRate float64) (float64, error) {
	params := DCFParams{GrowthRate: growthRate, Years: years, DiscountRate: discountRate}
	if err := params.Validate(); err != nil {
		return 0, err
	}

	records, err := Collect(a.FreeCashFlowSeries(ctx, symbol))
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, &ErrEmptySeries{Symbol: utils.NormalizeTicker(symbol)}
	}
	last := records[len(records)-1]

	value, err := DiscountedCashFlow(last.FreeCashFlow, growthRate, years, discountRate)
	if err != nil {
		return 0, err
	}
	a.log.Debug().
		Str("symbol", utils.NormalizeTicker(symbol)).
		Int("base_year", last.Year).
		Float64("value", value).
		Msg("discounted cash flow projected")
	return value, nil
}
