package yfinance

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/seenimoa/fundamentals/internal/infra"
	"github.com/seenimoa/fundamentals/internal/provider"
)

// Keys in a statement row that are not line items.
var skipKeys = map[string]bool{
	"endDate": true,
	"maxAge":  true,
}

// toStatement converts quoteSummary statement rows into a provider.Statement.
func (p *Provider) toStatement(symbol string, kind provider.StatementKind, rows []map[string]json.RawMessage) (provider.Statement, error) {
	if len(rows) == 0 {
		return nil, provider.Unavailable(providerName, symbol, kind, provider.ErrNoPeriods)
	}

	stmt := make(provider.Statement, len(rows))
	for i, row := range rows {
		period, err := extractDate(row)
		if err != nil {
			return nil, provider.Unavailable(providerName, symbol, kind, fmt.Errorf("statement %d: %w", i, err))
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

// extractDate reads the endDate of a statement row.
func extractDate(row map[string]json.RawMessage) (time.Time, error) {
	raw, ok := row["endDate"]
	if !ok {
		return time.Time{}, errors.New("missing endDate")
	}
	var v yfFinVal
	if err := json.Unmarshal(raw, &v); err != nil {
		return time.Time{}, fmt.Errorf("parse endDate: %w", err)
	}
	if v.Fmt != "" {
		return provider.ParsePeriod(v.Fmt)
	}
	if v.Raw != nil && *v.Raw > 0 {
		return provider.PeriodDate(time.Unix(int64(*v.Raw), 0).UTC()), nil
	}
	return time.Time{}, errors.New("empty endDate")
}

// lineItems extracts every reported numeric value from a statement row.
// Items Yahoo returns as empty objects are left out, so callers see them
// as missing rather than zero.
func lineItems(row map[string]json.RawMessage) provider.LineItems {
	items := make(provider.LineItems, len(row))
	for key, raw := range row {
		if skipKeys[key] {
			continue
		}
		var v yfFinVal
		if err := json.Unmarshal(raw, &v); err != nil || v.Raw == nil {
			continue
		}
		items[key] = *v.Raw
	}
	return items
}

func isNotFound(err error) bool {
	var httpErr *infra.ErrHTTP
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
