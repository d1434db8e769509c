package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockSource implements the Source interface for testing.
type mockSource struct {
	name string
}

func (m *mockSource) Info() Info {
	return Info{Name: m.name, Description: "Mock " + m.name}
}

func (m *mockSource) FetchBalanceSheet(context.Context, string) (Statement, error) {
	return Statement{}, nil
}

func (m *mockSource) FetchCashFlowStatement(context.Context, string) (Statement, error) {
	return Statement{}, nil
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&mockSource{name: "test-source"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-source")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-source" {
		t.Errorf("expected test-source, got %s", got.Info().Name)
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("missing")

	var notFound *ErrSourceNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
	if notFound.Name != "missing" {
		t.Errorf("expected name missing, got %s", notFound.Name)
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&mockSource{}); err == nil {
		t.Error("expected error for empty source name")
	}
}

func TestRegistryDefault(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Default(); err == nil {
		t.Error("expected error from empty registry")
	}

	_ = reg.Register(&mockSource{name: "first"})
	_ = reg.Register(&mockSource{name: "second"})

	def, err := reg.Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if def.Info().Name != "first" {
		t.Errorf("expected first registered source as default, got %s", def.Info().Name)
	}

	if err := reg.SetDefault("second"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	def, _ = reg.Default()
	if def.Info().Name != "second" {
		t.Errorf("expected second after SetDefault, got %s", def.Info().Name)
	}

	if err := reg.SetDefault("nope"); err == nil {
		t.Error("expected error for unknown default")
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(&mockSource{name: "zeta"})
	_ = reg.Register(&mockSource{name: "alpha"})

	infos := reg.List()
	if len(infos) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("expected sorted names, got %s, %s", infos[0].Name, infos[1].Name)
	}
}

// --- Statement Tests ---

func TestStatementPeriodsAscending(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }
	s := Statement{
		d(2023, 9, 30): {},
		d(2020, 9, 26): {},
		d(2022, 9, 24): {},
		d(2021, 9, 25): {},
	}

	periods := s.Periods()
	want := []time.Time{d(2020, 9, 26), d(2021, 9, 25), d(2022, 9, 24), d(2023, 9, 30)}
	if len(periods) != len(want) {
		t.Fatalf("expected %d periods, got %d", len(want), len(periods))
	}
	for i := range want {
		if !periods[i].Equal(want[i]) {
			t.Errorf("periods[%d] = %s, want %s", i, periods[i], want[i])
		}
	}
}

func TestPeriodDate(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := PeriodDate(time.Date(2023, 9, 30, 20, 0, 0, 0, loc))
	want := time.Date(2023, 9, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("PeriodDate: got %s, want %s", got, want)
	}
}

func TestParsePeriod(t *testing.T) {
	got, err := ParsePeriod("2022-12-31")
	if err != nil {
		t.Fatalf("ParsePeriod: %v", err)
	}
	if got.Year() != 2022 || got.Month() != time.December || got.Day() != 31 {
		t.Errorf("unexpected date %s", got)
	}
	if _, err := ParsePeriod("31/12/2022"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestErrDataUnavailableUnwrap(t *testing.T) {
	err := Unavailable("yfinance", "AAPL", KindBalanceSheet, ErrSymbolNotFound)

	var du *ErrDataUnavailable
	if !errors.As(err, &du) {
		t.Fatalf("expected *ErrDataUnavailable, got %T", err)
	}
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Error("expected errors.Is to reach ErrSymbolNotFound")
	}
	want := "yfinance: balance sheet for AAPL unavailable: symbol not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
