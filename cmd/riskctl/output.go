package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aristath/riskanalyzer/internal/modules/analysis"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAnalysis(w io.Writer, a *analysis.Analysis) {
	fmt.Fprintf(w, "%s  %s  (%s data, %s to %s, %d days)\n",
		a.Ticker, a.Period, a.DataSource, a.StartDate, a.EndDate, a.Observations)
	fmt.Fprintf(w, "Risk level: %s (score %d)\n\n", a.Assessment.RiskLevel, a.Assessment.RiskScore)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	m := a.Metrics
	fmt.Fprintf(tw, "Sharpe ratio\t%.2f\n", m.SharpeRatio)
	fmt.Fprintf(tw, "Sortino ratio\t%.2f\n", m.SortinoRatio)
	fmt.Fprintf(tw, "Max drawdown\t%s\n", percent(m.MaxDrawdown))
	fmt.Fprintf(tw, "Annualized return\t%s\n", percent(m.AnnualizedReturn))
	fmt.Fprintf(tw, "Annualized volatility\t%s\n", percent(m.AnnualizedVolatility))
	fmt.Fprintf(tw, "Total return\t%s\n", percent(m.TotalReturn))
	fmt.Fprintf(tw, "Best day\t%s\n", percent(m.BestDayReturn))
	fmt.Fprintf(tw, "Worst day\t%s\n", percent(m.WorstDayReturn))
	_ = tw.Flush()

	if len(a.Assessment.RiskFactors) > 0 {
		fmt.Fprintln(w, "\nRisk factors:")
		for _, f := range a.Assessment.RiskFactors {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	fmt.Fprintf(w, "\n%s\n", a.Assessment.OverallNarrative)
}

func printComparison(w io.Writer, cmp *analysis.Comparison) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tLEVEL\tSCORE\tSHARPE\tVOLATILITY\tMAX DD\tSOURCE")
	for _, a := range cmp.Analyses {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%s\t%s\t%s\n",
			a.Ticker, a.Assessment.RiskLevel, a.Assessment.RiskScore, a.Metrics.SharpeRatio,
			percent(a.Metrics.AnnualizedVolatility), percent(a.Metrics.MaxDrawdown), a.DataSource)
	}
	_ = tw.Flush()

	for _, f := range cmp.Failures {
		fmt.Fprintf(w, "failed: %s: %s\n", f.Ticker, f.Error)
	}

	s := cmp.Summary
	fmt.Fprintf(w, "\nBest Sharpe: %s\nLowest volatility: %s\nSmallest drawdown: %s\nRanking (least risky first): %s\n",
		s.BestSharpe, s.LowestVolatility, s.SmallestDrawdown, strings.Join(s.RankingByRisk, ", "))
}

func printHistory(w io.Writer, ticker string, items []*analysis.Analysis) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No analyses stored for %s\n", strings.ToUpper(ticker))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tID\tPERIOD\tLEVEL\tSHARPE\tVOLATILITY")
	for _, a := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			a.CreatedAt.Format("2006-01-02 15:04"), a.ID, a.Period, a.Assessment.RiskLevel,
			a.Metrics.SharpeRatio, percent(a.Metrics.AnnualizedVolatility))
	}
	_ = tw.Flush()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
