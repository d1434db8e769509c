// Package providers builds the concrete statement sources from configuration
// and registers them with a provider registry.
package providers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/fundamentals/internal/config"
	"github.com/seenimoa/fundamentals/internal/provider"
	"github.com/seenimoa/fundamentals/internal/providers/fmp"
	"github.com/seenimoa/fundamentals/internal/providers/sec"
	"github.com/seenimoa/fundamentals/internal/providers/snapshot"
	"github.com/seenimoa/fundamentals/internal/providers/yfinance"
)

// RegisterAllTo registers every source cfg enables to the given registry
// and makes cfg.Name the default. Sources that need an API key or a file
// are only registered when one is configured.
func RegisterAllTo(reg *provider.Registry, cfg config.ProviderConfig, log zerolog.Logger) error {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	// --- YFinance (free, no API key) ---
	yf := yfinance.New(yfinance.Options{
		BaseURL:   cfg.YFinance.BaseURL,
		Timeout:   timeout,
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
		Logger:    log,
	})
	if err := reg.Register(yf); err != nil {
		return err
	}

	// --- SEC EDGAR (free, no API key) ---
	ed := sec.New(sec.Options{
		DataURL:    cfg.SEC.DataURL,
		TickersURL: cfg.SEC.TickersURL,
		Timeout:    timeout,
		UserAgent:  cfg.SEC.UserAgent,
		Logger:     log,
	})
	if err := reg.Register(ed); err != nil {
		return err
	}

	// --- FMP (requires API key) ---
	if cfg.FMP.APIKey != "" {
		fp, err := fmp.New(fmp.Options{
			APIKey:    cfg.FMP.APIKey,
			BaseURL:   cfg.FMP.BaseURL,
			Timeout:   timeout,
			RateLimit: cfg.RateLimit,
			Limit:     cfg.FMP.Limit,
			UserAgent: cfg.UserAgent,
			Logger:    log,
		})
		if err != nil {
			return err
		}
		if err := reg.Register(fp); err != nil {
			return err
		}
	}

	// --- Snapshot (requires a file) ---
	if cfg.Snapshot.Path != "" {
		if err := reg.Register(snapshot.New(cfg.Snapshot.Path)); err != nil {
			return err
		}
	}

	if cfg.Name == "" {
		return nil
	}
	return reg.SetDefault(cfg.Name)
}
