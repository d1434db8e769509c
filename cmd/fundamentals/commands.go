package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fundamentals/api"
	"github.com/seenimoa/fundamentals/internal/analysis/fundamental"
	"github.com/seenimoa/fundamentals/internal/config"
	"github.com/seenimoa/fundamentals/pkg/models"
	"github.com/seenimoa/fundamentals/pkg/utils"
)

// symbolArg returns the symbol argument or the configured default.
func (a *app) symbolArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Valuation.Symbol
}

// --- Version Command ---

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fundamentals %s\n", version)
			fmt.Fprintf(out, "  commit:  %s\n", commit)
			fmt.Fprintf(out, "  built:   %s\n", date)
		},
	}
}

// --- Book Command ---

func newBookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book [symbol]",
		Short: "Print yearly book value (current assets minus current liabilities)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fundamental.Collect(a.analyzer.BookValueSeries(cmd.Context(), a.symbolArg(args)))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return printBook(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().Bool("json", false, "print records as JSON")
	return cmd
}

func printBook(out io.Writer, records []models.BookRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tAssets\tLiabilities\tBook\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", r.Year,
			utils.FormatAmount(r.TotalAssets), utils.FormatAmount(r.TotalLiabilities), utils.FormatAmount(r.Book))
	}
	return tw.Flush()
}

// --- FCF Command ---

func newFCFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fcf [symbol]",
		Short: "Print yearly free cash flow (operating cash flow minus capex)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := fundamental.Collect(a.analyzer.FreeCashFlowSeries(cmd.Context(), a.symbolArg(args)))
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return printCashFlow(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().Bool("json", false, "print records as JSON")
	return cmd
}

func printCashFlow(out io.Writer, records []models.CashFlowRecord) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Year\tFree Cash Flow\t")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t\n", r.Year, utils.FormatAmount(r.FreeCashFlow))
	}
	return tw.Flush()
}

// --- DCF Command ---

func newDCFCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dcf [symbol]",
		Short: "Project a discounted cash flow from the latest free cash flow",
		Long: `Project a discounted cash flow from the most recent free cash flow:

  sum over i in 1..years of  base + base*growth*i / (1+discount)^i

Flags default to the valuation section of the config. --market-discount
replaces --discount with the latest FRED rate (needs FRED_API_KEY).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := a.dcfFlags(cmd)
			if err != nil {
				return err
			}
			return a.printDCF(cmd, a.symbolArg(args), params)
		},
	}
	addDCFFlags(cmd)
	return cmd
}

func addDCFFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("growth", 0, "annual growth rate as a decimal (default from config)")
	cmd.Flags().Int("years", 0, "projection horizon in years (default from config)")
	cmd.Flags().Float64("discount", 0, "flat discount rate as a decimal (default from config)")
	cmd.Flags().Bool("market-discount", false, "use the latest FRED series value as the discount rate")
}

// dcfFlags merges explicitly set flags over the configured valuation.
func (a *app) dcfFlags(cmd *cobra.Command) (fundamental.DCFParams, error) {
	v := a.cfg.Valuation
	p := fundamental.DCFParams{GrowthRate: v.GrowthRate, Years: v.Years, DiscountRate: v.DiscountRate}

	flags := cmd.Flags()
	if flags.Changed("growth") {
		p.GrowthRate, _ = flags.GetFloat64("growth")
	}
	if flags.Changed("years") {
		p.Years, _ = flags.GetInt("years")
	}
	if flags.Changed("discount") {
		p.DiscountRate, _ = flags.GetFloat64("discount")
	}
	if market, _ := flags.GetBool("market-discount"); market {
		rates, err := a.rateSource()
		if err != nil {
			return p, err
		}
		rate, err := rates.LatestRate(cmd.Context(), v.FRED.Series)
		if err != nil {
			return p, fmt.Errorf("market discount rate: %w", err)
		}
		p.DiscountRate = rate
	}
	return p, nil
}

func (a *app) printDCF(cmd *cobra.Command, symbol string, p fundamental.DCFParams) error {
	value, err := a.analyzer.ProjectDiscountedCashFlow(cmd.Context(), symbol, p.GrowthRate, p.Years, p.DiscountRate)
	if err != nil {
		return fmt.Errorf("dcf %s: %w", utils.NormalizeTicker(symbol), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), utils.FormatAmount(value))
	return nil
}

// --- Summary Command ---

func newSummaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [symbol]",
		Short: "Print book value, free cash flow and the DCF projection together",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := a.dcfFlags(cmd)
			if err != nil {
				return err
			}
			s, err := a.analyzer.Summarize(cmd.Context(), a.symbolArg(args), params)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			return printSummary(cmd.OutOrStdout(), s)
		},
	}
	addDCFFlags(cmd)
	cmd.Flags().Bool("json", false, "print the summary as JSON")
	return cmd
}

func printSummary(out io.Writer, s *fundamental.Summary) error {
	fmt.Fprintf(out, "%s (source: %s)\n\n", s.Symbol, s.Source)
	if err := printBook(out, s.Book); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := printCashFlow(out, s.FreeCashFlow); err != nil {
		return err
	}
	fmt.Fprintln(out)

	growth := "n/a"
	if s.FCFGrowthPct != nil {
		growth = utils.FormatPct(*s.FCFGrowthPct)
	}
	fmt.Fprintf(out, "FCF growth:  %s\n", growth)
	fmt.Fprintf(out, "DCF (%d years, growth %s, discount %s):  %s\n",
		s.Params.Years, utils.FormatPct(s.Params.GrowthRate*100), utils.FormatPct(s.Params.DiscountRate*100),
		utils.FormatAmount(s.DCF))
	return nil
}

// --- Serve Command (API Server) ---

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.API.Port, _ = cmd.Flags().GetInt("port")
			}
			srv := api.NewServer(a.cfg, a.reg, a.log)
			a.attachRateSource(srv)
			addr := net.JoinHostPort(a.cfg.API.Host, strconv.Itoa(a.cfg.API.Port))
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().Int("port", 0, "listen port (default from config)")
	return cmd
}

// --- Sources Command ---

func newSourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List statement sources and API key status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			def := a.analyzer.Source().Info().Name

			fmt.Fprintln(out, "Sources:")
			for _, info := range a.reg.List() {
				marker := " "
				if info.Name == def {
					marker = "*"
				}
				fmt.Fprintf(out, "  %s %-10s %s\n", marker, info.Name, info.Description)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "API Keys:")
			for _, k := range config.CheckAPIKeys(a.cfg) {
				status := "not set"
				if k.IsSet {
					status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
				}
				fmt.Fprintf(out, "    %-16s %s\n", k.Name+":", status)
			}
			return nil
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
