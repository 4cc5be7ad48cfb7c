package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderNarrative(t *testing.T) {
	m := RiskMetrics{
		SharpeRatio:          0.84,
		SortinoRatio:         math.Inf(1),
		MaxDrawdown:          -0.125,
		AnnualizedReturn:     0.153,
		AnnualizedVolatility: 0.21,
		TotalReturn:          0.153,
	}
	a := &RiskAssessment{
		RiskLevel:                LevelModerate,
		VolatilityAssessment:     VolatilityAssessment(m.AnnualizedVolatility),
		ReturnAssessment:         ReturnAssessment(m.AnnualizedReturn),
		DrawdownAssessment:       DrawdownAssessment(m.MaxDrawdown),
		InvestmentRecommendation: Recommendation(LevelModerate),
		MarketContext: MarketContext{
			VIXLevel:                14.3,
			MarketTrend:             "bullish",
			InterestRateEnvironment: "falling",
			MarketSentiment:         "optimistic",
		},
	}

	narrative, err := RenderNarrative("NVDA", m, a)
	require.NoError(t, err)

	assert.Contains(t, narrative, "NVDA carries a Moderate risk profile")
	assert.Contains(t, narrative, "returned 15.30% in total")
	assert.Contains(t, narrative, "maximum drawdown of -12.50%")
	assert.Contains(t, narrative, "Sharpe ratio of 0.84")
	assert.Contains(t, narrative, "Sortino ratio of infinite (no downside days)")
	assert.Contains(t, narrative, "VIX at 14.3")
	assert.Contains(t, narrative, "optimistic sentiment, bullish trend")
	assert.Contains(t, narrative, Recommendation(LevelModerate))

	// Rendering never alters the structured fields.
	assert.Equal(t, -0.125, m.MaxDrawdown)
	assert.Empty(t, a.OverallNarrative)
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "1.50", formatRatio(1.5))
	assert.Equal(t, "-infinite", formatRatio(math.Inf(-1)))
	assert.Equal(t, "undefined", formatRatio(math.NaN()))
}
