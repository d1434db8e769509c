package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/fundamentals/internal/analysis/fundamental"
	"github.com/seenimoa/fundamentals/internal/config"
	"github.com/seenimoa/fundamentals/internal/provider"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

// stubSource serves fixed statements for AAPL and fails for anything else.
type stubSource struct {
	name     string
	balance  provider.Statement
	cashflow provider.Statement
	err      error
}

func (s *stubSource) Info() provider.Info { return provider.Info{Name: s.name} }

func (s *stubSource) FetchBalanceSheet(_ context.Context, symbol string) (provider.Statement, error) {
	return s.fetch(symbol, provider.KindBalanceSheet, s.balance)
}

func (s *stubSource) FetchCashFlowStatement(_ context.Context, symbol string) (provider.Statement, error) {
	return s.fetch(symbol, provider.KindCashFlow, s.cashflow)
}

func (s *stubSource) fetch(symbol string, kind provider.StatementKind, stmt provider.Statement) (provider.Statement, error) {
	if s.err != nil {
		return nil, provider.Unavailable(s.name, symbol, kind, s.err)
	}
	if symbol != "AAPL" {
		return nil, provider.Unavailable(s.name, symbol, kind, provider.ErrSymbolNotFound)
	}
	return stmt, nil
}

type stubRates struct {
	rate   float64
	series string
}

func (r *stubRates) LatestRate(_ context.Context, series string) (float64, error) {
	r.series = series
	return r.rate, nil
}

func period(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleStub(name string) *stubSource {
	return &stubSource{
		name: name,
		balance: provider.Statement{
			period(2022, 9, 24): {provider.FieldTotalCurrentAssets: 135405, provider.FieldTotalCurrentLiabilities: 153982},
			period(2023, 9, 30): {provider.FieldTotalCurrentAssets: 143566, provider.FieldTotalCurrentLiabilities: 145308},
		},
		cashflow: provider.Statement{
			period(2022, 9, 24): {provider.FieldOperatingCashFlow: 1500, provider.FieldCapitalExpenditures: 500},
			period(2023, 9, 30): {provider.FieldOperatingCashFlow: 1200, provider.FieldCapitalExpenditures: 200},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Valuation: config.ValuationConfig{
			Symbol: "AAPL", GrowthRate: 0.05, Years: 2, DiscountRate: 0.05,
			FRED: config.FREDConfig{Series: "DGS10"},
		},
	}
}

func testServer(t *testing.T, sources ...provider.Source) *Server {
	t.Helper()
	reg := provider.NewRegistry()
	if len(sources) == 0 {
		sources = []provider.Source{sampleStub("stub")}
	}
	for _, src := range sources {
		require.NoError(t, reg.Register(src))
	}
	return NewServer(testConfig(), reg, zerolog.Nop())
}

func get(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp), "decode %s", path)
	return rec, resp
}

// decodeData re-decodes the envelope's data into dest.
func decodeData(t *testing.T, resp APIResponse, dest any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

// ════════════════════════════════════════════════════════════════════
// Health & Sources
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, resp := get(t, srv, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.True(t, resp.Success)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var data map[string]any
		decodeData(t, resp, &data)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "stub", data["source"])
	}
}

func TestSources(t *testing.T) {
	srv := testServer(t, sampleStub("beta"), sampleStub("alpha"))

	rec, resp := get(t, srv, "/api/v1/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var data SourcesResponse
	decodeData(t, resp, &data)
	assert.Equal(t, "beta", data.Default, "first registered source is the default")
	require.Len(t, data.Sources, 2)
	assert.Equal(t, "alpha", data.Sources[0].Name)
}

func TestConfigKeys(t *testing.T) {
	t.Setenv("FMP_API_KEY", "")
	t.Setenv("FRED_API_KEY", "")
	srv := testServer(t)

	rec, resp := get(t, srv, "/api/v1/config/keys")
	require.Equal(t, http.StatusOK, rec.Code)

	var keys []config.KeyStatus
	decodeData(t, resp, &keys)
	assert.Len(t, keys, 2)
	for _, k := range keys {
		assert.False(t, k.IsSet)
	}
}

// ════════════════════════════════════════════════════════════════════
// Valuation endpoints
// ════════════════════════════════════════════════════════════════════

func TestBook(t *testing.T) {
	rec, resp := get(t, testServer(t), "/api/v1/book/aapl")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Symbol  string `json:"symbol"`
		Source  string `json:"source"`
		Records []struct {
			Year int     `json:"year"`
			Book float64 `json:"book"`
		} `json:"records"`
	}
	decodeData(t, resp, &data)
	assert.Equal(t, "AAPL", data.Symbol)
	assert.Equal(t, "stub", data.Source)
	require.Len(t, data.Records, 2)
	assert.Equal(t, 2022, data.Records[0].Year)
	assert.Equal(t, 143566.0-145308.0, data.Records[1].Book)
}

func TestFreeCashFlow(t *testing.T) {
	rec, resp := get(t, testServer(t), "/api/v1/fcf/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Records []struct {
			Year         int     `json:"year"`
			FreeCashFlow float64 `json:"free_cashflow"`
		} `json:"records"`
	}
	decodeData(t, resp, &data)
	require.Len(t, data.Records, 2)
	assert.Equal(t, 1000.0, data.Records[0].FreeCashFlow)
	assert.Equal(t, 2023, data.Records[1].Year)
}

func TestDCFDefaults(t *testing.T) {
	rec, resp := get(t, testServer(t), "/api/v1/dcf/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var data DCFResponse
	decodeData(t, resp, &data)
	assert.Equal(t, 2138.0, data.Value)
	assert.Equal(t, "$2,138", data.Formatted)
	assert.Equal(t, fundamental.DCFParams{GrowthRate: 0.05, Years: 2, DiscountRate: 0.05}, data.Params)
}

func TestDCFQueryParams(t *testing.T) {
	rec, resp := get(t, testServer(t), "/api/v1/dcf/AAPL?growth=0&years=3&discount=0.1")
	require.Equal(t, http.StatusOK, rec.Code)

	var data DCFResponse
	decodeData(t, resp, &data)
	assert.Equal(t, 3000.0, data.Value)
	assert.Equal(t, 3, data.Params.Years)
}

func TestDCFMarketDiscount(t *testing.T) {
	srv := testServer(t)

	rec, _ := get(t, srv, "/api/v1/dcf/AAPL?discount=market")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "no rate source configured")

	rates := &stubRates{rate: 0.05}
	srv.SetRateSource(rates)
	rec, resp := get(t, srv, "/api/v1/dcf/AAPL?discount=market")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "DGS10", rates.series)

	var data DCFResponse
	decodeData(t, resp, &data)
	assert.Equal(t, 2138.0, data.Value)
}

func TestSummary(t *testing.T) {
	rec, resp := get(t, testServer(t), "/api/v1/summary/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)

	var data fundamental.Summary
	decodeData(t, resp, &data)
	assert.Equal(t, "AAPL", data.Symbol)
	assert.Len(t, data.Book, 2)
	assert.Len(t, data.FreeCashFlow, 2)
	assert.Equal(t, 2138.0, data.DCF)
	require.NotNil(t, data.FCFGrowthPct)
	assert.Equal(t, 0.0, *data.FCFGrowthPct)
}

func TestSourceQueryParam(t *testing.T) {
	srv := testServer(t, sampleStub("first"), sampleStub("second"))

	rec, resp := get(t, srv, "/api/v1/fcf/AAPL?source=second")
	require.Equal(t, http.StatusOK, rec.Code)
	var data SeriesResponse
	decodeData(t, resp, &data)
	assert.Equal(t, "second", data.Source)

	rec, _ = get(t, srv, "/api/v1/fcf/AAPL?source=missing")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Error mapping
// ════════════════════════════════════════════════════════════════════

func TestErrorStatus(t *testing.T) {
	missingCapex := sampleStub("stub")
	missingCapex.cashflow = provider.Statement{
		period(2023, 9, 30): {provider.FieldOperatingCashFlow: 1200},
	}
	empty := sampleStub("stub")
	empty.cashflow = provider.Statement{}
	down := &stubSource{name: "stub", err: errors.New("connection refused")}

	tests := []struct {
		name   string
		src    provider.Source
		path   string
		status int
	}{
		{"bad years", sampleStub("stub"), "/api/v1/dcf/AAPL?years=0", http.StatusBadRequest},
		{"years not a number", sampleStub("stub"), "/api/v1/dcf/AAPL?years=five", http.StatusBadRequest},
		{"growth not a number", sampleStub("stub"), "/api/v1/dcf/AAPL?growth=x", http.StatusBadRequest},
		{"discount at -1", sampleStub("stub"), "/api/v1/summary/AAPL?discount=-1", http.StatusBadRequest},
		{"unknown symbol", sampleStub("stub"), "/api/v1/book/ZZZZ", http.StatusNotFound},
		{"missing field", missingCapex, "/api/v1/dcf/AAPL", http.StatusUnprocessableEntity},
		{"empty series", empty, "/api/v1/dcf/AAPL", http.StatusNotFound},
		{"provider down", down, "/api/v1/fcf/AAPL", http.StatusBadGateway},
		{"projection overflows", sampleStub("stub"), "/api/v1/dcf/AAPL?years=400&discount=-0.99", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := get(t, testServer(t, tt.src), tt.path)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusBadRequest, statusFor(&provider.ErrSourceNotFound{Name: "x"}))
	assert.Equal(t, http.StatusNotFound, statusFor(&fundamental.ErrEmptySeries{Symbol: "AAPL"}))
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(sampleStub("stub")))
	srv := NewServer(testConfig(), reg, zerolog.New(&logs))

	rec := httptest.NewRecorder()
	srv.writeJSON(rec, http.StatusOK, APIResponse{Success: true, Data: math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "failed to encode response", resp.Error)

	assert.Contains(t, logs.String(), `"component":"api"`)
	assert.Contains(t, logs.String(), "encode JSON response")
}
