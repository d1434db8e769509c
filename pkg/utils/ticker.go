package utils

import "strings"

// NormalizeTicker canonicalizes a ticker symbol for provider lookup:
// surrounding whitespace and a leading "$" are dropped and the symbol is
// uppercased. "aapl", " AAPL " and "$aapl" all become "AAPL".
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	return ticker
}
