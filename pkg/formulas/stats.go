// Package formulas provides the numeric building blocks for risk analysis.
//
// Every statistic in this package uses the population convention (divide by N)
// and a 252 trading-day year so that ratios and volatilities stay comparable.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization convention used by every metric.
const TradingDaysPerYear = 252

// AnnualizationFactor is sqrt(252), applied to daily statistics.
var AnnualizationFactor = math.Sqrt(TradingDaysPerYear)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// PopulationStdDev calculates the standard deviation with divisor N.
// A series whose values are all identical has a standard deviation of exactly 0.
func PopulationStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	if floats.Max(data) == floats.Min(data) {
		return 0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// Max returns the largest value, or 0 for an empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Max(data)
}

// Min returns the smallest value, or 0 for an empty slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Min(data)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: population std dev of daily returns × sqrt(252)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return PopulationStdDev(dailyReturns) * AnnualizationFactor
}

// DailyRiskFreeRate converts an annual risk-free rate to its daily equivalent.
func DailyRiskFreeRate(annualRate float64) float64 {
	return annualRate / TradingDaysPerYear
}

// ExcessReturns subtracts the daily risk-free rate from every return.
// The input slice is never modified.
func ExcessReturns(returns []float64, annualRiskFreeRate float64) []float64 {
	daily := DailyRiskFreeRate(annualRiskFreeRate)
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - daily
	}
	return excess
}

// CalculateReturns converts prices to simple returns
// Returns[i] = (Price[i+1] - Price[i]) / Price[i]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}
