package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/aristath/riskanalyzer/pkg/formulas"
)

// DefaultRiskFreeRate is the annual risk-free rate used when a caller has no preference.
const DefaultRiskFreeRate = 0.02

var (
	// ErrEmptySeries is returned when a price or return series has no observations.
	ErrEmptySeries = errors.New("empty price or return series")
	// ErrLengthMismatch is returned when len(returns) != len(prices)-1.
	ErrLengthMismatch = errors.New("return series length does not match price series")
	// ErrNonPositivePrice is returned when a price is zero, negative or not finite.
	ErrNonPositivePrice = errors.New("prices must be positive and finite")
)

// AdditionalMetrics are the series statistics that have no degenerate fallback.
type AdditionalMetrics struct {
	AnnualizedReturn     float64
	AnnualizedVolatility float64
	BestDayReturn        float64
	WorstDayReturn       float64
	TotalReturn          float64
}

// Calculator computes risk metrics. It is stateless; the risk-free rate is
// supplied on every call.
type Calculator struct{}

// NewCalculator creates a metrics calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// SharpeRatio returns the annualized Sharpe ratio, or 0 for empty or zero-variance input.
func (c *Calculator) SharpeRatio(returns []float64, annualRiskFreeRate float64) float64 {
	return formulas.SharpeRatio(returns, annualRiskFreeRate)
}

// SortinoRatio returns the annualized Sortino ratio. +Inf is a valid result.
func (c *Calculator) SortinoRatio(returns []float64, annualRiskFreeRate float64) float64 {
	return formulas.SortinoRatio(returns, annualRiskFreeRate)
}

// MaxDrawdown returns the most negative peak-to-trough decline, in [-1, 0].
func (c *Calculator) MaxDrawdown(prices []float64) float64 {
	return formulas.MaxDrawdown(prices)
}

// AdditionalMetrics computes return and volatility statistics.
// Unlike the ratio functions, empty input is an error.
func (c *Calculator) AdditionalMetrics(returns, prices []float64) (*AdditionalMetrics, error) {
	if len(returns) == 0 || len(prices) == 0 {
		return nil, ErrEmptySeries
	}
	if prices[0] <= 0 {
		return nil, fmt.Errorf("first price %v: %w", prices[0], ErrNonPositivePrice)
	}

	totalReturn := formulas.TotalReturn(prices)

	return &AdditionalMetrics{
		TotalReturn:          totalReturn,
		AnnualizedReturn:     formulas.AnnualizedReturn(totalReturn, len(returns)),
		AnnualizedVolatility: formulas.AnnualizedVolatility(returns),
		BestDayReturn:        formulas.Max(returns),
		WorstDayReturn:       formulas.Min(returns),
	}, nil
}

// Calculate validates the series and produces a complete RiskMetrics value.
func (c *Calculator) Calculate(prices, returns []float64, annualRiskFreeRate float64) (*RiskMetrics, error) {
	if err := ValidateSeries(prices, returns); err != nil {
		return nil, err
	}

	additional, err := c.AdditionalMetrics(returns, prices)
	if err != nil {
		return nil, err
	}

	return &RiskMetrics{
		SharpeRatio:          c.SharpeRatio(returns, annualRiskFreeRate),
		SortinoRatio:         c.SortinoRatio(returns, annualRiskFreeRate),
		MaxDrawdown:          c.MaxDrawdown(prices),
		AnnualizedReturn:     additional.AnnualizedReturn,
		AnnualizedVolatility: additional.AnnualizedVolatility,
		BestDayReturn:        additional.BestDayReturn,
		WorstDayReturn:       additional.WorstDayReturn,
		TotalReturn:          additional.TotalReturn,
	}, nil
}

// CalculateFromPrices derives simple returns from prices and calls Calculate.
func (c *Calculator) CalculateFromPrices(prices []float64, annualRiskFreeRate float64) (*RiskMetrics, error) {
	if len(prices) < 2 {
		return nil, ErrEmptySeries
	}
	return c.Calculate(prices, formulas.CalculateReturns(prices), annualRiskFreeRate)
}

// ValidateSeries checks the structural contract between prices and returns.
func ValidateSeries(prices, returns []float64) error {
	if len(prices) == 0 || len(returns) == 0 {
		return ErrEmptySeries
	}
	if len(returns) != len(prices)-1 {
		return fmt.Errorf("%d prices and %d returns: %w", len(prices), len(returns), ErrLengthMismatch)
	}
	for i, p := range prices {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("price at index %d is %v: %w", i, p, ErrNonPositivePrice)
		}
	}
	return nil
}
