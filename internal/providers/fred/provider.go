// Package fred reads the latest value of a FRED (Federal Reserve Economic
// Data) interest-rate series, for use as a market discount rate.
//
// Requires a free API key from https://fred.stlouisfed.org/docs/api/api_key.html
// Rate limit: 120 requests/minute.
// Docs: https://fred.stlouisfed.org/docs/api/fred/
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fundamentals/internal/infra"
)

const (
	defaultBaseURL = "https://api.stlouisfed.org/fred"

	// DefaultSeries is the 10-year Treasury constant maturity yield.
	DefaultSeries = "DGS10"
)

// ErrNoObservation is returned when a series has no usable value.
var ErrNoObservation = errors.New("fred: no observation")

// Options configures a Client.
type Options struct {
	APIKey    string // required
	BaseURL   string // defaults to https://api.stlouisfed.org/fred
	Timeout   time.Duration
	UserAgent string
	Logger    zerolog.Logger
}

// Client fetches FRED series observations.
type Client struct {
	apiKey  string
	baseURL string
	client  *infra.Client
	limiter *infra.RateLimiter
	log     zerolog.Logger
}

// New creates a FRED client. It fails when no API key is configured.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("fred: missing required credential: api_key")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		apiKey:  opts.APIKey,
		baseURL: base,
		client:  infra.NewClient(opts.Timeout, opts.UserAgent),
		limiter: infra.NewRateLimiter(2, time.Second),
		log:     opts.Logger.With().Str("source", "fred").Logger(),
	}, nil
}

// fredObservationsResponse is the subset of series/observations we read.
type fredObservationsResponse struct {
	Units        string            `json:"units"`
	Count        int               `json:"count"`
	Observations []fredObservation `json:"observations"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"` // "." marks a missing value
}

// LatestRate returns the most recent observation of a percent-valued series
// as a decimal, so 4.25 becomes 0.0425. An empty seriesID selects
// DefaultSeries.
func (c *Client) LatestRate(ctx context.Context, seriesID string) (float64, error) {
	if seriesID == "" {
		seriesID = DefaultSeries
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", c.apiKey)
	q.Set("file_type", "json")
	q.Set("sort_order", "desc")
	q.Set("limit", "10")
	u := c.baseURL + "/series/observations?" + q.Encode()

	c.log.Debug().Str("series", seriesID).Msg("fetching observations")

	var resp fredObservationsResponse
	if err := c.fetchJSON(ctx, u, &resp); err != nil {
		return 0, fmt.Errorf("fred series %s: %w", seriesID, err)
	}

	// Newest first; skip missing values such as market holidays.
	for _, o := range resp.Observations {
		if o.Value == "." || o.Value == "" {
			continue
		}
		v, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			return 0, fmt.Errorf("fred series %s: parse %q on %s: %w", seriesID, o.Value, o.Date, err)
		}
		c.log.Debug().Str("series", seriesID).Str("date", o.Date).Float64("percent", v).Msg("latest observation")
		return v / 100, nil
	}
	return 0, fmt.Errorf("%w for series %s", ErrNoObservation, seriesID)
}

// fetchJSON performs a GET request to FRED API and decodes JSON.
func (c *Client) fetchJSON(ctx context.Context, u string, dest any) error {
	body, _, err := c.client.Get(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read FRED response: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse FRED JSON: %w", err)
	}
	return nil
}
