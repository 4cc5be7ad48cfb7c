// Package risk turns price series into risk metrics and categorical risk assessments.
//
// Everything in this package is a pure function of its inputs: the calculator and
// classifier hold no mutable state and can be shared freely across goroutines.
package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Level is the categorical risk rating.
type Level string

const (
	LevelLow      Level = "Low"
	LevelModerate Level = "Moderate"
	LevelHigh     Level = "High"
	LevelVeryHigh Level = "Very High"
)

// Levels lists every risk level from least to most risky.
var Levels = []Level{LevelLow, LevelModerate, LevelHigh, LevelVeryHigh}

// RiskMetrics holds the statistics computed for one price series.
// MaxDrawdown is in [-1, 0]; SortinoRatio may be +Inf when there is no downside.
type RiskMetrics struct {
	SharpeRatio          float64 `json:"sharpe_ratio" msgpack:"sharpe_ratio"`
	SortinoRatio         float64 `json:"sortino_ratio" msgpack:"sortino_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown" msgpack:"max_drawdown"`
	AnnualizedReturn     float64 `json:"annualized_return" msgpack:"annualized_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility" msgpack:"annualized_volatility"`
	BestDayReturn        float64 `json:"best_day_return" msgpack:"best_day_return"`
	WorstDayReturn       float64 `json:"worst_day_return" msgpack:"worst_day_return"`
	TotalReturn          float64 `json:"total_return" msgpack:"total_return"`
}

// MarshalJSON encodes non-finite ratios as the strings "Infinity", "-Infinity"
// and "NaN" since JSON numbers cannot carry them.
func (m RiskMetrics) MarshalJSON() ([]byte, error) {
	type plain RiskMetrics
	return json.Marshal(struct {
		plain
		SharpeRatio  JSONFloat `json:"sharpe_ratio"`
		SortinoRatio JSONFloat `json:"sortino_ratio"`
	}{
		plain:        plain(m),
		SharpeRatio:  JSONFloat(m.SharpeRatio),
		SortinoRatio: JSONFloat(m.SortinoRatio),
	})
}

// UnmarshalJSON accepts both numeric and string-encoded ratios.
func (m *RiskMetrics) UnmarshalJSON(data []byte) error {
	type plain RiskMetrics
	aux := struct {
		*plain
		SharpeRatio  JSONFloat `json:"sharpe_ratio"`
		SortinoRatio JSONFloat `json:"sortino_ratio"`
	}{plain: (*plain)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.SharpeRatio = float64(aux.SharpeRatio)
	m.SortinoRatio = float64(aux.SortinoRatio)
	return nil
}

// JSONFloat is a float64 that survives a JSON round trip even when infinite or NaN.
type JSONFloat float64

// MarshalJSON implements json.Marshaler.
func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *JSONFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "Infinity", "+Infinity":
			*f = JSONFloat(math.Inf(1))
		case "-Infinity":
			*f = JSONFloat(math.Inf(-1))
		case "NaN":
			*f = JSONFloat(math.NaN())
		default:
			return fmt.Errorf("invalid float literal %q", s)
		}
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// MarketContext describes the market backdrop an assessment is made against.
type MarketContext struct {
	VIXLevel                float64 `json:"vix_level" msgpack:"vix_level"`
	MarketTrend             string  `json:"market_trend" msgpack:"market_trend"`
	InterestRateEnvironment string  `json:"interest_rate_environment" msgpack:"interest_rate_environment"`
	MarketSentiment         string  `json:"market_sentiment" msgpack:"market_sentiment"`
}

// RiskAssessment is the categorical reading of a RiskMetrics value.
type RiskAssessment struct {
	RiskLevel                Level         `json:"risk_level" msgpack:"risk_level"`
	RiskScore                int           `json:"risk_score" msgpack:"risk_score"`
	RiskFactors              []string      `json:"risk_factors" msgpack:"risk_factors"`
	VolatilityAssessment     string        `json:"volatility_assessment" msgpack:"volatility_assessment"`
	ReturnAssessment         string        `json:"return_assessment" msgpack:"return_assessment"`
	DrawdownAssessment       string        `json:"drawdown_assessment" msgpack:"drawdown_assessment"`
	InvestmentRecommendation string        `json:"investment_recommendation" msgpack:"investment_recommendation"`
	MarketContext            MarketContext `json:"market_context" msgpack:"market_context"`
	OverallNarrative         string        `json:"overall_narrative" msgpack:"overall_narrative"`
}
