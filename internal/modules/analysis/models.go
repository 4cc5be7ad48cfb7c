// Package analysis runs risk analyses end to end: fetch prices, compute
// metrics, classify, persist and publish.
package analysis

import (
	"errors"
	"time"

	"github.com/aristath/riskanalyzer/internal/modules/risk"
	"github.com/aristath/riskanalyzer/pkg/formulas"
)

var (
	// ErrNotFound is returned when an analysis ID does not exist.
	ErrNotFound = errors.New("analysis not found")
	// ErrInvalidRequest is returned for malformed tickers, periods or rates.
	ErrInvalidRequest = errors.New("invalid analysis request")
)

// Analysis is one completed, persisted risk analysis.
type Analysis struct {
	ID           string                      `json:"id" msgpack:"id"`
	Ticker       string                      `json:"ticker" msgpack:"ticker"`
	Period       string                      `json:"period" msgpack:"period"`
	DataSource   string                      `json:"data_source" msgpack:"data_source"`
	StartDate    string                      `json:"start_date" msgpack:"start_date"`
	EndDate      string                      `json:"end_date" msgpack:"end_date"`
	Observations int                         `json:"observations" msgpack:"observations"`
	RiskFreeRate float64                     `json:"risk_free_rate" msgpack:"risk_free_rate"`
	Metrics      risk.RiskMetrics            `json:"metrics" msgpack:"metrics"`
	Assessment   risk.RiskAssessment         `json:"assessment" msgpack:"assessment"`
	Technical    *formulas.TechnicalSnapshot `json:"technical,omitempty" msgpack:"technical,omitempty"`
	CreatedAt    time.Time                   `json:"created_at" msgpack:"created_at"`
}

// Request asks for a single analysis. Zero values select the configured defaults.
type Request struct {
	Ticker       string   `json:"ticker" validate:"required,max=12"`
	Period       string   `json:"period" validate:"omitempty,oneof=1mo 3mo 6mo 1y 2y 5y"`
	RiskFreeRate *float64 `json:"risk_free_rate" validate:"omitempty,gte=-0.05,lte=0.25"`
}

// CompareRequest asks for analyses of several tickers over the same period.
type CompareRequest struct {
	Tickers      []string `json:"tickers" validate:"required,min=2,max=10,dive,required,max=12"`
	Period       string   `json:"period" validate:"omitempty,oneof=1mo 3mo 6mo 1y 2y 5y"`
	RiskFreeRate *float64 `json:"risk_free_rate" validate:"omitempty,gte=-0.05,lte=0.25"`
}

// Failure records a ticker that could not be analyzed in a comparison.
type Failure struct {
	Ticker string `json:"ticker"`
	Error  string `json:"error"`
}

// ComparisonSummary highlights the leaders across successful analyses.
type ComparisonSummary struct {
	BestSharpe       string   `json:"best_sharpe"`
	LowestVolatility string   `json:"lowest_volatility"`
	SmallestDrawdown string   `json:"smallest_drawdown"`
	RankingByRisk    []string `json:"ranking_by_risk"`
}

// Comparison is the result of a batch analysis.
type Comparison struct {
	Period   string            `json:"period"`
	Analyses []*Analysis       `json:"analyses"`
	Failures []Failure         `json:"failures"`
	Summary  ComparisonSummary `json:"summary"`
}
