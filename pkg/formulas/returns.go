package formulas

import "math"

// TotalReturn is the simple return from the first to the last price.
// Callers must guarantee a non-empty series with a positive first price.
func TotalReturn(prices []float64) float64 {
	first := prices[0]
	last := prices[len(prices)-1]
	return (last - first) / first
}

// AnnualizedReturn compounds a total return over the number of observed
// trading days: (1 + total)^(252/days) − 1. Returns 0 when days <= 0.
func AnnualizedReturn(totalReturn float64, tradingDays int) float64 {
	if tradingDays <= 0 {
		return 0
	}

	years := float64(tradingDays) / TradingDaysPerYear
	return math.Pow(1+totalReturn, 1/years) - 1
}
