package fundamental

import (
	"fmt"
	"time"
)

// ErrMissingField is returned when a reporting period lacks a line item the
// pipeline needs. The period is never skipped or zero-filled.
type ErrMissingField struct {
	Symbol string
	Period time.Time
	Field  string
}

func (e *ErrMissingField) Error() string {
	return fmt.Sprintf("%s: period %s is missing %q", e.Symbol, e.Period.Format("2006-01-02"), e.Field)
}

// ErrEmptySeries is returned when a projection needs at least one record but
// the series yielded none.
type ErrEmptySeries struct {
	Symbol string
}

func (e *ErrEmptySeries) Error() string {
	return fmt.Sprintf("%s: no free cash flow records to project from", e.Symbol)
}

// ErrInvalidParameter is returned for arguments outside their valid domain.
type ErrInvalidParameter struct {
	Name   string
	Value  any
	Reason string
}

func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Name, e.Value, e.Reason)
}
