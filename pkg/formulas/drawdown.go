package formulas

// MaxDrawdown calculates the maximum drawdown of a price series.
//
//	drawdown_i = (price_i − peak_i) / peak_i,  peak_i = max(prices[0..i])
//
// The result is the most negative drawdown, in [-1, 0]. 0 means the series
// never declined from a running peak. An empty series returns 0.
func MaxDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	maxDrawdown := 0.0
	peak := prices[0]

	for _, price := range prices {
		if price > peak {
			peak = price
		}

		if peak > 0 {
			drawdown := (price - peak) / peak
			if drawdown < maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	return maxDrawdown
}

// CurrentDrawdown returns the drawdown of the last price from the running peak.
func CurrentDrawdown(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}

	peak := Max(prices)
	if peak <= 0 {
		return 0
	}

	return (prices[len(prices)-1] - peak) / peak
}
