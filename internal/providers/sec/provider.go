// Package sec implements the SEC EDGAR statement source.
// It reads annual figures from the XBRL company facts API, which covers
// every US filer and needs no API key.
//
// SEC policy requires a descriptive User-Agent on every request.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package sec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fundamentals/internal/infra"
	"github.com/seenimoa/fundamentals/internal/provider"
)

const (
	providerName = "sec"

	// SEC EDGAR API endpoints.
	defaultDataURL    = "https://data.sec.gov"                            // JSON data API
	defaultTickersURL = "https://www.sec.gov/files/company_tickers.json" // CIK <-> ticker mapping

	// SEC requires a User-Agent with a contact for EDGAR requests.
	secUserAgent = "fundamentals/1.0 (github.com/seenimoa/fundamentals)"
)

// Options configures a Provider. Zero values select the defaults.
type Options struct {
	DataURL    string // defaults to https://data.sec.gov
	TickersURL string // defaults to https://www.sec.gov/files/company_tickers.json
	Timeout    time.Duration
	RateLimit  int    // requests per second, defaults to 10
	UserAgent  string // defaults to a fundamentals contact string
	Logger     zerolog.Logger
}

// Provider implements provider.Source for SEC EDGAR.
type Provider struct {
	dataURL    string
	tickersURL string
	client     *infra.Client
	limiter    *infra.RateLimiter
	log        zerolog.Logger
}

// New creates a new SEC EDGAR source.
func New(opts Options) *Provider {
	data := strings.TrimRight(opts.DataURL, "/")
	if data == "" {
		data = defaultDataURL
	}
	tickers := opts.TickersURL
	if tickers == "" {
		tickers = defaultTickersURL
	}
	rate := opts.RateLimit
	if rate <= 0 {
		rate = 10
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = secUserAgent
	}
	return &Provider{
		dataURL:    data,
		tickersURL: tickers,
		client:     infra.NewClient(opts.Timeout, ua),
		limiter:    infra.NewRateLimiter(rate, time.Second),
		log:        opts.Logger.With().Str("source", providerName).Logger(),
	}
}

// Info returns metadata about this source.
func (p *Provider) Info() provider.Info {
	return provider.Info{
		Name:        providerName,
		Description: "SEC EDGAR - annual XBRL facts for US filers",
		Website:     "https://www.sec.gov/edgar",
	}
}

// FetchBalanceSheet returns the fiscal year-end balance sheet items for symbol.
func (p *Provider) FetchBalanceSheet(ctx context.Context, symbol string) (provider.Statement, error) {
	return p.fetch(ctx, symbol, provider.KindBalanceSheet)
}

// FetchCashFlowStatement returns the fiscal year cash flow items for symbol.
func (p *Provider) FetchCashFlowStatement(ctx context.Context, symbol string) (provider.Statement, error) {
	return p.fetch(ctx, symbol, provider.KindCashFlow)
}

func (p *Provider) fetch(ctx context.Context, symbol string, kind provider.StatementKind) (provider.Statement, error) {
	cik, err := p.resolveCIK(ctx, symbol)
	if err != nil {
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}

	u := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", p.dataURL, padCIK(cik))
	p.log.Debug().Str("symbol", symbol).Str("cik", cik).Str("statement", string(kind)).Msg("fetching company facts")

	var resp companyFactsResponse
	if err := p.fetchJSON(ctx, u, &resp); err != nil {
		if isNotFound(err) {
			err = provider.ErrSymbolNotFound
		}
		return nil, provider.Unavailable(providerName, symbol, kind, err)
	}

	stmt := toStatement(resp.Facts[taxonomyUSGAAP], kind)
	if len(stmt) == 0 {
		return nil, provider.Unavailable(providerName, symbol, kind, provider.ErrNoPeriods)
	}

	p.log.Debug().Str("symbol", symbol).Str("statement", string(kind)).Int("periods", len(stmt)).Msg("statement fetched")
	return stmt, nil
}

// resolveCIK resolves a ticker symbol to a CIK number using the SEC tickers
// file. A numeric symbol is taken to be a CIK already.
func (p *Provider) resolveCIK(ctx context.Context, symbol string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if isNumeric(sym) {
		return sym, nil
	}

	var tickers map[string]tickerEntry
	if err := p.fetchJSON(ctx, p.tickersURL, &tickers); err != nil {
		return "", fmt.Errorf("fetch company tickers: %w", err)
	}
	for _, entry := range tickers {
		if strings.EqualFold(entry.Ticker, sym) {
			return fmt.Sprintf("%d", entry.CIK), nil
		}
	}
	return "", fmt.Errorf("%w: no CIK for %s", provider.ErrSymbolNotFound, sym)
}

// fetchJSON performs a rate-limited GET request and decodes the response.
func (p *Provider) fetchJSON(ctx context.Context, u string, dest any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	body, _, err := p.client.Get(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read SEC response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse SEC JSON: %w", err)
	}
	return nil
}

// padCIK pads a CIK number to 10 digits with leading zeros.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isNotFound(err error) bool {
	var httpErr *infra.ErrHTTP
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}
