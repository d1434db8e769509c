package fmp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/fundamentals/internal/provider"
)

// aliases maps FMP field names onto the line item names the pipeline reads.
var aliases = map[string]string{
	"operatingCashFlow":  provider.FieldOperatingCashFlow,
	"capitalExpenditure": provider.FieldCapitalExpenditures,
}

func (p *Provider) toStatement(symbol string, kind provider.StatementKind, rows []map[string]json.RawMessage) (provider.Statement, error) {
	if len(rows) == 0 {
		// FMP answers an unknown symbol with an empty list.
		return nil, provider.Unavailable(providerName, symbol, kind, provider.ErrSymbolNotFound)
	}

	stmt := make(provider.Statement, len(rows))
	for i, row := range rows {
		var date string
		if raw, ok := row["date"]; !ok || json.Unmarshal(raw, &date) != nil || date == "" {
			return nil, provider.Unavailable(providerName, symbol, kind, fmt.Errorf("statement %d: %w", i, errors.New("missing date")))
		}
		period, err := provider.ParsePeriod(date)
		if err != nil {
			return nil, provider.Unavailable(providerName, symbol, kind, err)
		}
		if _, dup := stmt[period]; dup {
			return nil, provider.Unavailable(providerName, symbol, kind,
				fmt.Errorf("duplicate period %s", period.Format(time.DateOnly)))
		}
		stmt[period] = lineItems(row)
	}

	p.log.Debug().Str("symbol", symbol).Str("statement", string(kind)).Int("periods", len(stmt)).Msg("statement fetched")
	return stmt, nil
}

// lineItems keeps every numeric field of a row. Nulls and strings are dropped.
func lineItems(row map[string]json.RawMessage) provider.LineItems {
	items := make(provider.LineItems, len(row))
	for key, raw := range row {
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil || v == nil {
			continue
		}
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		items[key] = *v
	}
	return items
}
