// Command fundamentals reports book value, free cash flow and discounted cash flow
// projections for a stock ticker.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/fundamentals/api"
	"github.com/seenimoa/fundamentals/internal/analysis/fundamental"
	"github.com/seenimoa/fundamentals/internal/config"
	"github.com/seenimoa/fundamentals/internal/logger"
	"github.com/seenimoa/fundamentals/internal/provider"
	"github.com/seenimoa/fundamentals/internal/providers"
	"github.com/seenimoa/fundamentals/internal/providers/fred"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fundamentals: %v\n", err)
		os.Exit(1)
	}
}

// app holds the state shared by every command once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	reg      *provider.Registry
	analyzer *fundamental.Analyzer
}

// newRootCmd builds the command tree. With no subcommand it prints the DCF
// projection for the configured default symbol.
func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "fundamentals",
		Short: "Book value, free cash flow and DCF projections for a stock",
		Long: `fundamentals fetches balance sheet and cash flow statements for a ticker
from a financial data provider and derives yearly book value, yearly free
cash flow and a discounted cash flow projection from them.

Run without a subcommand to print the DCF projection for the configured
default symbol.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := a.cfg.Valuation
			return a.printDCF(cmd, v.Symbol, fundamental.DCFParams{
				GrowthRate:   v.GrowthRate,
				Years:        v.Years,
				DiscountRate: v.DiscountRate,
			})
		},
	}

	root.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	root.PersistentFlags().String("source", "", "statement source override (yfinance, fmp, sec, snapshot)")

	root.AddCommand(
		newVersionCmd(),
		newBookCmd(a),
		newFCFCmd(a),
		newDCFCmd(a),
		newSummaryCmd(a),
		newServeCmd(a),
		newSourcesCmd(a),
	)
	return root
}

// setup loads configuration, applies flag overrides and wires the logger,
// the source registry and the analyzer.
func (a *app) setup(cmd *cobra.Command) error {
	var err error
	configFile, _ := cmd.Flags().GetString("config")
	if configFile != "" {
		a.cfg, err = config.LoadFromFile(configFile)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		a.cfg.Logging.Level = lvl
	}
	if src, _ := cmd.Flags().GetString("source"); src != "" {
		a.cfg.Provider.Name = src
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.log = logger.New(a.cfg.Logging)
	logger.SetGlobalLogger(a.log)

	a.reg = provider.NewRegistry()
	if err := providers.RegisterAllTo(a.reg, a.cfg.Provider, a.log); err != nil {
		return fmt.Errorf("failed to register sources: %w", err)
	}
	src, err := a.reg.Default()
	if err != nil {
		return err
	}
	a.analyzer = fundamental.NewAnalyzer(src, a.log)

	a.log.Debug().Str("source", src.Info().Name).Msg("configuration loaded")
	return nil
}

// rateSource returns the FRED client when an API key is configured.
func (a *app) rateSource() (*fred.Client, error) {
	fc := a.cfg.Valuation.FRED
	return fred.New(fred.Options{
		APIKey:    fc.APIKey,
		BaseURL:   fc.BaseURL,
		UserAgent: a.cfg.Provider.UserAgent,
		Logger:    a.log,
	})
}

// attachRateSource enables discount=market on srv. Without a FRED key the
// endpoint stays disabled; any other failure is logged as a warning.
func (a *app) attachRateSource(srv *api.Server) {
	rates, err := a.rateSource()
	if err != nil {
		ev := a.log.Warn()
		if a.cfg.Valuation.FRED.APIKey == "" {
			ev = a.log.Debug()
		}
		ev.Err(err).Msg("market discount rate unavailable")
		return
	}
	srv.SetRateSource(rates)
}
