package risk

import (
	"fmt"
	"math"
	"strings"
	"text/template"
)

var narrativeTemplate = template.Must(template.New("narrative").Funcs(template.FuncMap{
	"pct":   formatPercent,
	"ratio": formatRatio,
}).Parse(strings.TrimSpace(`
{{.Ticker}} carries a {{.Level}} risk profile. ` +
	`Over the analysis period it returned {{pct .Metrics.TotalReturn}} in total ({{pct .Metrics.AnnualizedReturn}} annualized) ` +
	`with {{pct .Metrics.AnnualizedVolatility}} annualized volatility and a maximum drawdown of {{pct .Metrics.MaxDrawdown}}. ` +
	`Risk-adjusted performance shows a Sharpe ratio of {{ratio .Metrics.SharpeRatio}} and a Sortino ratio of {{ratio .Metrics.SortinoRatio}}. ` +
	`{{.Assessment.VolatilityAssessment}}. {{.Assessment.ReturnAssessment}}. {{.Assessment.DrawdownAssessment}}. ` +
	`Market backdrop: {{.Assessment.MarketContext.MarketSentiment}} sentiment, {{.Assessment.MarketContext.MarketTrend}} trend, ` +
	`VIX at {{printf "%.1f" .Assessment.MarketContext.VIXLevel}}, {{.Assessment.MarketContext.InterestRateEnvironment}} rates. ` +
	`Recommendation: {{.Assessment.InvestmentRecommendation}}.`)))

type narrativeData struct {
	Ticker     string
	Level      Level
	Metrics    RiskMetrics
	Assessment *RiskAssessment
}

// RenderNarrative formats the display-only summary from already computed fields.
func RenderNarrative(ticker string, m RiskMetrics, a *RiskAssessment) (string, error) {
	var b strings.Builder
	err := narrativeTemplate.Execute(&b, narrativeData{
		Ticker:     ticker,
		Level:      a.RiskLevel,
		Metrics:    m,
		Assessment: a,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render narrative: %w", err)
	}
	return b.String(), nil
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func formatRatio(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "infinite (no downside days)"
	case math.IsInf(v, -1):
		return "-infinite"
	case math.IsNaN(v):
		return "undefined"
	}
	return fmt.Sprintf("%.2f", v)
}
