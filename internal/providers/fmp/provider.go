// Package fmp implements the Financial Modeling Prep (FMP) statement source.
// FMP serves fundamentals via a REST API with API key authentication.
//
// Free tier: 250 requests/day.
// Docs: https://financialmodelingprep.com/developer/docs
package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fundamentals/internal/infra"
	"github.com/seenimoa/fundamentals/internal/provider"
)

const (
	providerName   = "fmp"
	defaultBaseURL = "https://financialmodelingprep.com/api/v3"
)

// Options configures a Provider.
type Options struct {
	APIKey    string // required
	BaseURL   string // defaults to https://financialmodelingprep.com/api/v3
	Timeout   time.Duration
	RateLimit int // requests per second, defaults to 5
	Limit     int // periods per statement, defaults to 10
	UserAgent string
	Logger    zerolog.Logger
}

// Provider implements provider.Source for FMP.
type Provider struct {
	apiKey  string
	baseURL string
	limit   int
	client  *infra.Client
	limiter *infra.RateLimiter
	log     zerolog.Logger
}

// New creates an FMP source. It fails when no API key is configured.
func New(opts Options) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("fmp: missing required credential: api_key")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	rate := opts.RateLimit
	if rate <= 0 {
		rate = 5
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	return &Provider{
		apiKey:  opts.APIKey,
		baseURL: base,
		limit:   limit,
		client:  infra.NewClient(opts.Timeout, opts.UserAgent),
		limiter: infra.NewRateLimiter(rate, time.Second),
		log:     opts.Logger.With().Str("source", providerName).Logger(),
	}, nil
}

// Info returns metadata about this source.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:        providerName,
		Description: "Financial Modeling Prep - comprehensive financial data",
		Website:     "https://financialmodelingprep.com",
	}
}

// FetchBalanceSheet returns the annual balance sheets for symbol.
func (p *Provider) FetchBalanceSheet(ctx context.Context, symbol string) (provider.Statement, error) {
	rows, err := p.fetchRows(ctx, "balance-sheet-statement", symbol, provider.KindBalanceSheet)
	if err != nil {
		return nil, err
	}
	return p.toStatement(symbol, provider.KindBalanceSheet, rows)
}

// FetchCashFlowStatement returns the annual cash flow statements for symbol.
func (p *Provider) FetchCashFlowStatement(ctx context.Context, symbol string) (provider.Statement, error) {
	rows, err := p.fetchRows(ctx, "cash-flow-statement", symbol, provider.KindCashFlow)
	if err != nil {
		return nil, err
	}
	return p.toStatement(symbol, provider.KindCashFlow, rows)
}

func (p *Provider) fetchRows(ctx context.Context, endpoint, symbol string, kind provider.StatementKind) ([]map[string]json.RawMessage, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}

	p.log.Debug().Str("symbol", symbol).Str("endpoint", endpoint).Msg("fetching statement")

	var rows []map[string]json.RawMessage
	if err := p.fetchJSON(ctx, p.statementURL(endpoint, symbol), &rows); err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}
	return rows, nil
}

// statementURL builds a full FMP API URL with the API key appended.
func (p *Provider) statementURL(endpoint, symbol string) string {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(p.limit))
	q.Set("apikey", p.apiKey)
	return fmt.Sprintf("%s/%s/%s?%s", p.baseURL, endpoint, url.PathEscape(symbol), q.Encode())
}

// fetchJSON performs a GET request to FMP and decodes the response.
func (p *Provider) fetchJSON(ctx context.Context, u string, dest any) error {
	body, _, err := p.client.Get(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// FMP reports bad keys and exhausted quotas as a 200 with an error object.
	var apiErr struct {
		Message string `json:"Error Message"`
	}
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		return fmt.Errorf("fmp API error: %s", apiErr.Message)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FMP JSON: %w", err)
	}
	return nil
}
