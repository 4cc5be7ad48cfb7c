package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPopulationStdDev(t *testing.T) {
	// Deviations from mean 0.005: 0.005, -0.025, 0.025, -0.015, 0.01
	data := []float64{0.01, -0.02, 0.03, -0.01, 0.015}
	assert.InDelta(t, math.Sqrt(0.00032), PopulationStdDev(data), 1e-12)

	assert.Equal(t, 0.0, PopulationStdDev(nil))
	assert.Equal(t, 0.0, PopulationStdDev([]float64{0.01, 0.01, 0.01}))
	assert.Equal(t, 0.0, PopulationStdDev([]float64{-0.3}))
}

func TestSharpeRatio_HandComputed(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, -0.01, 0.015}

	expected := 0.005 / math.Sqrt(0.00032) * math.Sqrt(252)
	assert.InDelta(t, expected, SharpeRatio(returns, 0), 1e-9)
}

func TestSharpeRatio_SubtractsDailyRiskFree(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, -0.01, 0.015}

	// Shifting every return by a constant leaves the std dev unchanged.
	rf := 0.0252
	expected := (0.005 - rf/252) / math.Sqrt(0.00032) * math.Sqrt(252)
	assert.InDelta(t, expected, SharpeRatio(returns, rf), 1e-9)
}

func TestSharpeRatio_Degenerate(t *testing.T) {
	assert.Equal(t, 0.0, SharpeRatio(nil, 0.02))
	assert.Equal(t, 0.0, SharpeRatio([]float64{}, 0.02))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.01, 0.01, 0.01, 0.01}, 0.02))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.05}, 0))
}

func TestSortinoRatio_HandComputed(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, -0.01, 0.015}

	// Downside [-0.02, -0.01] has population std dev 0.005; mean excess is 0.005.
	assert.InDelta(t, math.Sqrt(252), SortinoRatio(returns, 0), 1e-9)
}

func TestSortinoRatio_NoDownside(t *testing.T) {
	sortino := SortinoRatio([]float64{0.01, 0.02, 0.03}, 0.02)
	assert.True(t, math.IsInf(sortino, 1))

	// Zero excess everywhere: no strictly negative value and a zero mean.
	assert.Equal(t, 0.0, SortinoRatio([]float64{0, 0, 0}, 0))
}

func TestSortinoRatio_SingleDownsideValue(t *testing.T) {
	assert.Equal(t, 0.0, SortinoRatio([]float64{0.02, -0.01, 0.03}, 0))
}

func TestSortinoRatio_ConstantSeries(t *testing.T) {
	// Constant returns below the risk-free rate: identical downside values.
	assert.Equal(t, 0.0, SortinoRatio([]float64{0, 0, 0, 0}, 0.02))
	// Constant returns above it: there is no downside at all.
	assert.True(t, math.IsInf(SortinoRatio([]float64{0.01, 0.01, 0.01}, 0), 1))
}

func TestSortinoRatio_Empty(t *testing.T) {
	assert.Equal(t, 0.0, SortinoRatio(nil, 0.02))
}

func TestMaxDrawdown(t *testing.T) {
	assert.Equal(t, -0.2, MaxDrawdown([]float64{100, 80, 120}))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{100, 101, 105, 110, 120}))
	assert.Equal(t, 0.0, MaxDrawdown(nil))
	assert.Equal(t, 0.0, MaxDrawdown([]float64{42}))
	assert.InDelta(t, (90.0-110.0)/110.0, MaxDrawdown([]float64{100, 105, 95, 110, 90}), 1e-12)
}

func TestMaxDrawdown_Bounds(t *testing.T) {
	dd := MaxDrawdown([]float64{50, 10, 70, 35, 1})
	assert.LessOrEqual(t, dd, 0.0)
	assert.GreaterOrEqual(t, dd, -1.0)
	assert.InDelta(t, (1.0-70.0)/70.0, dd, 1e-12)
}

func TestCurrentDrawdown(t *testing.T) {
	assert.InDelta(t, -0.25, CurrentDrawdown([]float64{100, 120, 90}), 1e-12)
	assert.Equal(t, 0.0, CurrentDrawdown([]float64{100, 120}))
	assert.Equal(t, 0.0, CurrentDrawdown(nil))
}

func TestAnnualizedVolatility(t *testing.T) {
	returns := []float64{0.01, -0.02, 0.03, -0.01, 0.015}
	assert.InDelta(t, math.Sqrt(0.00032)*math.Sqrt(252), AnnualizedVolatility(returns), 1e-12)
	assert.Equal(t, 0.0, AnnualizedVolatility([]float64{0.003, 0.003}))
	assert.Equal(t, 0.0, AnnualizedVolatility(nil))
}

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.1, returns[0], 1e-12)
	assert.InDelta(t, -0.1, returns[1], 1e-12)

	assert.Empty(t, CalculateReturns([]float64{100}))
}

func TestExcessReturns_DoesNotMutateInput(t *testing.T) {
	returns := []float64{0.01, 0.02}
	excess := ExcessReturns(returns, 0.252)

	assert.Equal(t, []float64{0.01, 0.02}, returns)
	assert.InDelta(t, 0.009, excess[0], 1e-12)
	assert.InDelta(t, 0.019, excess[1], 1e-12)
}

func TestTotalAndAnnualizedReturn(t *testing.T) {
	total := TotalReturn([]float64{100, 105, 95, 110, 90})
	assert.InDelta(t, -0.10, total, 1e-12)

	assert.InDelta(t, 0.1, AnnualizedReturn(0.1, 252), 1e-12)
	// Two years compounding to +21% is +10% per year.
	assert.InDelta(t, 0.1, AnnualizedReturn(0.21, 504), 1e-12)
	assert.Equal(t, 0.0, AnnualizedReturn(0.5, 0))
}

func TestMinMax(t *testing.T) {
	data := []float64{0.02, -0.05, 0.07, 0.01}
	assert.Equal(t, 0.07, Max(data))
	assert.Equal(t, -0.05, Min(data))
	assert.Equal(t, 0.0, Max(nil))
	assert.Equal(t, 0.0, Min(nil))
}
