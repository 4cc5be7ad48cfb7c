package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearPrices(n int, start, step float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = start + float64(i)*step
	}
	return prices
}

func TestCalculateRSI_InsufficientData(t *testing.T) {
	assert.Nil(t, CalculateRSI([]float64{1, 2, 3}, 14))
}

func TestCalculateRSI_RisingSeries(t *testing.T) {
	rsi := CalculateRSI(linearPrices(30, 100, 1), 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 100.0, *rsi, 1e-9)
}

func TestCalculateSMA(t *testing.T) {
	sma := CalculateSMA(linearPrices(60, 1, 1), 50)
	require.NotNil(t, sma)
	// Mean of 11..60
	assert.InDelta(t, 35.5, *sma, 1e-9)

	assert.Nil(t, CalculateSMA(linearPrices(10, 1, 1), 50))
	assert.Nil(t, CalculateSMA(linearPrices(10, 1, 1), 0))
}

func TestCalculateTechnicalSnapshot(t *testing.T) {
	assert.Nil(t, CalculateTechnicalSnapshot(nil))

	up := CalculateTechnicalSnapshot(linearPrices(250, 100, 0.5))
	require.NotNil(t, up)
	assert.NotNil(t, up.SMA200)
	assert.Equal(t, "uptrend", up.TrendLabel)
	assert.Equal(t, 0.0, up.DrawdownFromPeak)

	down := CalculateTechnicalSnapshot(linearPrices(250, 300, -0.5))
	require.NotNil(t, down)
	assert.Equal(t, "downtrend", down.TrendLabel)
	// Last close 175.5 against the first close 300
	assert.InDelta(t, -0.415, down.DrawdownFromPeak, 1e-12)

	short := CalculateTechnicalSnapshot(linearPrices(20, 100, 1))
	require.NotNil(t, short)
	assert.Nil(t, short.SMA50)
	assert.Equal(t, "insufficient_data", short.TrendLabel)
}
