package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// TechnicalSnapshot is a point-in-time view of common price indicators.
// Fields are nil when the series is too short for the indicator's lookback.
type TechnicalSnapshot struct {
	RSI14     *float64 `json:"rsi_14" msgpack:"rsi_14"`
	SMA50     *float64 `json:"sma_50" msgpack:"sma_50"`
	SMA200    *float64 `json:"sma_200" msgpack:"sma_200"`
	LastPrice float64  `json:"last_price" msgpack:"last_price"`
	// DrawdownFromPeak is the last close relative to the highest close, in [-1, 0].
	DrawdownFromPeak float64 `json:"drawdown_from_peak" msgpack:"drawdown_from_peak"`
	TrendLabel       string  `json:"trend" msgpack:"trend"`
}

// CalculateRSI calculates the Relative Strength Index
//
//	RSI = 100 - (100 / (1 + RS)), RS = average gain / average loss over N periods
//
// Returns nil if there are fewer than length+1 closes.
func CalculateRSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) > 0 && !math.IsNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

// CalculateSMA returns the latest simple moving average over length closes.
func CalculateSMA(closes []float64, length int) *float64 {
	if length <= 0 || len(closes) < length {
		return nil
	}

	sma := talib.Sma(closes, length)
	if len(sma) > 0 && !math.IsNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// CalculateTechnicalSnapshot computes RSI(14), SMA(50), SMA(200) and a trend
// label from closing prices. Returns nil for an empty series.
func CalculateTechnicalSnapshot(closes []float64) *TechnicalSnapshot {
	if len(closes) == 0 {
		return nil
	}

	snapshot := &TechnicalSnapshot{
		RSI14:            CalculateRSI(closes, 14),
		SMA50:            CalculateSMA(closes, 50),
		SMA200:           CalculateSMA(closes, 200),
		LastPrice:        closes[len(closes)-1],
		DrawdownFromPeak: CurrentDrawdown(closes),
	}
	snapshot.TrendLabel = trendLabel(snapshot)

	return snapshot
}

func trendLabel(s *TechnicalSnapshot) string {
	switch {
	case s.SMA50 != nil && s.SMA200 != nil:
		if *s.SMA50 > *s.SMA200 && s.LastPrice > *s.SMA50 {
			return "uptrend"
		}
		if *s.SMA50 < *s.SMA200 && s.LastPrice < *s.SMA50 {
			return "downtrend"
		}
		return "sideways"
	case s.SMA50 != nil:
		if s.LastPrice > *s.SMA50 {
			return "above_sma50"
		}
		return "below_sma50"
	default:
		return "insufficient_data"
	}
}
