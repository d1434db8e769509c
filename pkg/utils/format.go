// Package utils provides common formatting and ticker helpers.
package utils

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// FormatAmount formats a number as a dollar amount with thousands separators.
// Whole numbers carry no decimals (1234567 → "$1,234,567"); fractional values
// keep their shortest exact decimal form (1234.5 → "$1,234.5"). The sign goes
// after the currency symbol ("$-5").
func FormatAmount(value float64) string {
	if value == 0 {
		// Avoids "$-0" for negative zero.
		return "$0"
	}
	return "$" + humanize.Commaf(value)
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if math.IsNaN(pct) {
		return "n/a"
	}
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}
