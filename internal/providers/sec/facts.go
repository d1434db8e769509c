package sec

import (
	"time"

	"github.com/seenimoa/fundamentals/internal/provider"
)

const (
	taxonomyUSGAAP = "us-gaap"
	unitUSD        = "USD"
)

// companyFactsResponse is the response from the company facts endpoint.
type companyFactsResponse struct {
	CIK        int                        `json:"cik"`
	EntityName string                     `json:"entityName"`
	Facts      map[string]map[string]fact `json:"facts"` // taxonomy -> concept -> fact
}

type fact struct {
	Label string                `json:"label"`
	Units map[string][]factUnit `json:"units"` // unit type ("USD", "shares") -> values
}

type factUnit struct {
	Start string  `json:"start,omitempty"` // empty for instant (balance sheet) facts
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	FY    int     `json:"fy"`
	FP    string  `json:"fp"` // "Q1", "Q2", "Q3", "FY"
	Form  string  `json:"form"`
	Filed string  `json:"filed"`
}

// tickerEntry is a row from the CIK<->ticker mapping file, which is a map
// of the form {"0": {cik_str, ticker, title}, ...}.
type tickerEntry struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// concepts maps each line item to the us-gaap concepts that report it, in
// order of preference.
var concepts = map[provider.StatementKind]map[string][]string{
	provider.KindBalanceSheet: {
		provider.FieldTotalCurrentAssets:      {"AssetsCurrent"},
		provider.FieldTotalCurrentLiabilities: {"LiabilitiesCurrent"},
	},
	provider.KindCashFlow: {
		provider.FieldOperatingCashFlow: {
			"NetCashProvidedByUsedInOperatingActivities",
			"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
		},
		provider.FieldCapitalExpenditures: {
			"PaymentsToAcquirePropertyPlantAndEquipment",
			"PaymentsToAcquireProductiveAssets",
		},
	},
}

var annualForms = map[string]bool{
	"10-K":   true,
	"10-K/A": true,
	"20-F":   true,
	"20-F/A": true,
	"40-F":   true,
}

// toStatement picks the annual values of every concept for kind and keys
// them by period-end date. When a period is reported by several filings,
// the most recently filed value wins.
func toStatement(facts map[string]fact, kind provider.StatementKind) provider.Statement {
	stmt := provider.Statement{}
	for field, names := range concepts[kind] {
		for _, name := range names {
			values := annualValues(facts[name], kind == provider.KindCashFlow)
			if len(values) == 0 {
				continue
			}
			for end, v := range values {
				items, ok := stmt[end]
				if !ok {
					items = provider.LineItems{}
					stmt[end] = items
				}
				items[field] = v.Val
			}
			break
		}
	}
	return stmt
}

// annualValues returns the USD values of a concept reported on annual
// forms. Duration facts must span roughly one fiscal year so that
// comparative and cumulative figures are not mistaken for annual ones.
func annualValues(f fact, duration bool) map[time.Time]factUnit {
	out := map[time.Time]factUnit{}
	for _, u := range f.Units[unitUSD] {
		if !annualForms[u.Form] || u.FP != "FY" {
			continue
		}
		end, err := provider.ParsePeriod(u.End)
		if err != nil {
			continue
		}
		if duration {
			start, err := provider.ParsePeriod(u.Start)
			if err != nil {
				continue
			}
			if days := end.Sub(start).Hours() / 24; days < 350 || days > 380 {
				continue
			}
		}
		if prev, ok := out[end]; ok && prev.Filed >= u.Filed {
			continue
		}
		out[end] = u
	}
	return out
}
