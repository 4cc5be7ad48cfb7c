package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aristath/riskanalyzer/internal/config"
	"github.com/aristath/riskanalyzer/internal/di"
	"github.com/aristath/riskanalyzer/internal/modules/analysis"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/pkg/logger"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand
type options struct {
	jsonOutput   bool
	period       string
	riskFreeRate float64
	simulated    bool
	verbose      bool
	timeout      time.Duration
}

func newRootCmd(load func() (*config.Config, error)) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "Analyze the risk profile of stocks from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	flags.StringVar(&opts.period, "period", "", "analysis period (1mo, 3mo, 6mo, 1y, 2y, 5y)")
	flags.Float64Var(&opts.riskFreeRate, "risk-free-rate", 0, "annual risk-free rate (defaults to RISK_FREE_RATE)")
	flags.BoolVar(&opts.simulated, "simulated", false, "use simulated price data only")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall command timeout")

	rootCmd.AddCommand(
		newAnalyzeCmd(load, opts),
		newCompareCmd(load, opts),
		newHistoryCmd(load, opts),
	)

	return rootCmd
}

func newAnalyzeCmd(load func() (*config.Config, error), opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [ticker]",
		Short: "Run a risk analysis for one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, load, opts, func(ctx context.Context, svc *analysis.Service) error {
				a, err := svc.Analyze(ctx, analysis.Request{
					Ticker:       args[0],
					Period:       opts.period,
					RiskFreeRate: rateFlag(cmd, opts),
				})
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), a)
				}
				printAnalysis(cmd.OutOrStdout(), a)
				return nil
			})
		},
	}
}

func newCompareCmd(load func() (*config.Config, error), opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compare [ticker] [ticker...]",
		Short: "Analyze several tickers over the same period and rank them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, load, opts, func(ctx context.Context, svc *analysis.Service) error {
				cmp, err := svc.Compare(ctx, analysis.CompareRequest{
					Tickers:      args,
					Period:       opts.period,
					RiskFreeRate: rateFlag(cmd, opts),
				})
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), cmp)
				}
				printComparison(cmd.OutOrStdout(), cmp)
				return nil
			})
		},
	}
}

func newHistoryCmd(load func() (*config.Config, error), opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [ticker]",
		Short: "List stored analyses for a ticker, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, load, opts, func(ctx context.Context, svc *analysis.Service) error {
				items, err := svc.History(ctx, args[0], limit)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), items)
				}
				printHistory(cmd.OutOrStdout(), args[0], items)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of analyses to list")

	return cmd
}

// rateFlag returns the risk-free rate override, or nil when the flag was not given
func rateFlag(cmd *cobra.Command, opts *options) *float64 {
	if !cmd.Flags().Changed("risk-free-rate") {
		return nil
	}
	rate := opts.riskFreeRate
	return &rate
}

// withService loads configuration, wires the container without starting the
// scheduler, and runs fn against the analysis service.
func withService(cmd *cobra.Command, load func() (*config.Config, error), opts *options, fn func(context.Context, *analysis.Service) error) error {
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.simulated {
		cfg.MarketDataMode = marketdata.ModeSimulated
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})

	container, _, err := di.Wire(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	return fn(ctx, container.AnalysisService)
}
