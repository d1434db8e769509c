package models

import (
	"encoding/json"
	"testing"
)

func TestNewBookRecord(t *testing.T) {
	r := NewBookRecord(2023, 143566e6, 145308e6)
	if r.Year != 2023 {
		t.Errorf("Year: got %d, want 2023", r.Year)
	}
	if r.Book != 143566e6-145308e6 {
		t.Errorf("Book: got %f, want %f", r.Book, 143566e6-145308e6)
	}
	if r.TotalAssets != 143566e6 || r.TotalLiabilities != 145308e6 {
		t.Errorf("inputs not preserved: %+v", r)
	}
}

func TestNewCashFlowRecord(t *testing.T) {
	tests := []struct {
		operating, capex, want float64
	}{
		{1200, 200, 1000},
		{1200, -200, 1400}, // provider reports capex as a negative outflow
		{0, 0, 0},
		{-50, 25, -75},
	}
	for _, tt := range tests {
		r := NewCashFlowRecord(2022, tt.operating, tt.capex)
		if r.FreeCashFlow != tt.want {
			t.Errorf("NewCashFlowRecord(%v, %v): got %v, want %v", tt.operating, tt.capex, r.FreeCashFlow, tt.want)
		}
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	data, err := json.Marshal(NewCashFlowRecord(2021, 10, 4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"year":2021,"free_cashflow":6}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	data, err = json.Marshal(NewBookRecord(2021, 10, 4))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"year":2021,"total_liabilities":4,"total_assets":10,"book":6}` {
		t.Errorf("unexpected JSON: %s", data)
	}
}
