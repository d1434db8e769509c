package provider

import (
	"fmt"
	"slices"
	"time"
)

// LineItems maps a named line item (e.g. "totalCurrentAssets") to its value.
type LineItems map[string]float64

// Statement maps a period-end date to the line items reported for it.
type Statement map[time.Time]LineItems

// Periods returns the period-end dates of s in ascending order.
func (s Statement) Periods() []time.Time {
	periods := make([]time.Time, 0, len(s))
	for p := range s {
		periods = append(periods, p)
	}
	slices.SortFunc(periods, func(a, b time.Time) int { return a.Compare(b) })
	return periods
}

// PeriodDate normalizes t to midnight UTC of its calendar date, which is the
// form every source uses for statement keys.
func PeriodDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParsePeriod parses a YYYY-MM-DD period-end date.
func ParsePeriod(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return t, nil
}
