package formulas

import "math"

// SharpeRatio calculates the annualized Sharpe ratio of daily returns.
//
//	Sharpe = mean(excess) / popstd(excess) × sqrt(252)
//
// where excess_i = r_i − annualRiskFreeRate/252.
// Returns 0 for an empty series or a series with zero variance.
func SharpeRatio(returns []float64, annualRiskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	excess := ExcessReturns(returns, annualRiskFreeRate)
	stdDev := PopulationStdDev(excess)
	if stdDev == 0 {
		return 0
	}

	return Mean(excess) / stdDev * AnnualizationFactor
}

// SortinoRatio calculates the annualized Sortino ratio of daily returns.
// Only strictly negative excess returns contribute to the downside deviation.
//
//	Sortino = mean(excess) / popstd(downside) × sqrt(252)
//
// Fallbacks:
//   - no downside observations: +Inf when mean(excess) > 0, otherwise 0
//   - zero downside deviation (including a single downside value): 0
func SortinoRatio(returns []float64, annualRiskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	excess := ExcessReturns(returns, annualRiskFreeRate)
	meanExcess := Mean(excess)

	downside := make([]float64, 0, len(excess))
	for _, e := range excess {
		if e < 0 {
			downside = append(downside, e)
		}
	}

	if len(downside) == 0 {
		if meanExcess > 0 {
			return math.Inf(1)
		}
		return 0
	}

	downsideDeviation := PopulationStdDev(downside)
	if downsideDeviation == 0 {
		return 0
	}

	return meanExcess / downsideDeviation * AnnualizationFactor
}
