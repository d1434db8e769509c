// Package yfinance implements the Yahoo Finance statement source.
// It reads the v10 quoteSummary balanceSheetHistory and
// cashflowStatementHistory modules, which need no API key.
package yfinance

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
	providerName   = "yfinance"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// Options configures a Provider. Zero values select the defaults.
type Options struct {
	BaseURL   string        // defaults to https://query1.finance.yahoo.com
	Timeout   time.Duration // HTTP timeout, defaults to 30s
	RateLimit int           // requests per second, defaults to 5
	UserAgent string
	Logger    zerolog.Logger
}

// Provider implements provider.Source for Yahoo Finance.
type Provider struct {
	baseURL string
	client  *infra.Client
	limiter *infra.RateLimiter
	log     zerolog.Logger
}

// New creates a new Yahoo Finance source.
func New(opts Options) *Provider {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	rate := opts.RateLimit
	if rate <= 0 {
		rate = 5
	}
	return &Provider{
		baseURL: base,
		client:  infra.NewClient(opts.Timeout, opts.UserAgent),
		limiter: infra.NewRateLimiter(rate, time.Second),
		log:     opts.Logger.With().Str("source", providerName).Logger(),
	}
}

// Info returns metadata about this source.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:        providerName,
		Description: "Yahoo Finance - free global financial data",
		Website:     "https://finance.yahoo.com",
	}
}

// FetchBalanceSheet returns the annual balance sheets for symbol.
func (p *Provider) FetchBalanceSheet(ctx context.Context, symbol string) (provider.Statement, error) {
	res, err := p.quoteSummary(ctx, symbol, "balanceSheetHistory", provider.KindBalanceSheet)
	if err != nil {
		return nil, err
	}
	var rows []map[string]json.RawMessage
	if res.BalanceSheetHistory != nil {
		rows = res.BalanceSheetHistory.Statements
	}
	return p.toStatement(symbol, provider.KindBalanceSheet, rows)
}

// FetchCashFlowStatement returns the annual cash flow statements for symbol.
func (p *Provider) FetchCashFlowStatement(ctx context.Context, symbol string) (provider.Statement, error) {
	res, err := p.quoteSummary(ctx, symbol, "cashflowStatementHistory", provider.KindCashFlow)
	if err != nil {
		return nil, err
	}
	var rows []map[string]json.RawMessage
	if res.CashflowStatementHistory != nil {
		rows = res.CashflowStatementHistory.Statements
	}
	return p.toStatement(symbol, provider.KindCashFlow, rows)
}

// quoteSummary fetches a single quoteSummary module for symbol.
func (p *Provider) quoteSummary(ctx context.Context, symbol, module string, kind provider.StatementKind) (*yfQuoteSummaryResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}

	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		p.baseURL, url.PathEscape(symbol), module)

	p.log.Debug().Str("symbol", symbol).Str("module", module).Msg("fetching quote summary")

	var resp yfQuoteSummaryResponse
	if err := p.fetchJSON(ctx, u, &resp); err != nil {
		if isNotFound(err) {
			err = provider.ErrSymbolNotFound
		}
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}
	if e := resp.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, provider.Unavailable(providerName, symbol, kind,
				fmt.Errorf("%w: %s", provider.ErrSymbolNotFound, e.Description))
		}
		return nil, provider.Unavailable(providerName, symbol, kind,
			fmt.Errorf("yfinance API error: %s", e.Description))
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, provider.Unavailable(providerName, symbol, kind, provider.ErrSymbolNotFound)
	}
	return &resp.QuoteSummary.Result[0], nil
}

// fetchJSON performs a GET request and decodes the response into dest.
func (p *Provider) fetchJSON(ctx context.Context, u string, dest any) error {
	body, _, err := p.client.Get(ctx, u, jsonHeaders())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}
