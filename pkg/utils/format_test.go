package utils

import (
	"math"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "$0"},
		{math.Copysign(0, -1), "$0"},
		{7, "$7"},
		{100, "$100"},
		{1000, "$1,000"},
		{12345, "$12,345"},
		{123456, "$123,456"},
		{1234567, "$1,234,567"},
		{2138, "$2,138"},
		{1234.5, "$1,234.5"},
		{-5, "$-5"},
		{-1234567, "$-1,234,567"},
		{521703000000, "$521,703,000,000"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatAmount(tt.input)
			if result != tt.expected {
				t.Errorf("FormatAmount(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.45, "+2.45%"},
		{-1.23, "-1.23%"},
		{0.0, "+0.00%"},
		{math.NaN(), "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatPct(tt.input)
			if result != tt.expected {
				t.Errorf("FormatPct(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}
