package marketdata

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristath/riskanalyzer/pkg/formulas"
)

// DataSource records where a price series came from.
type DataSource string

const (
	SourceReal      DataSource = "real"
	SourceSimulated DataSource = "simulated"
)

// DateLayout is the ISO-8601 calendar date format used for series dates.
const DateLayout = "2006-01-02"

// ErrNoData is returned when a source has no usable prices for a ticker.
var ErrNoData = errors.New("no price data available")

// PriceSeries is an immutable daily close series with its derived simple returns.
// len(Returns) == len(Prices)-1 == len(Dates)-1.
type PriceSeries struct {
	Ticker     string     `json:"ticker"`
	Period     Period     `json:"period"`
	DataSource DataSource `json:"data_source"`
	Dates      []string   `json:"dates"`
	Prices     []float64  `json:"prices"`
	Returns    []float64  `json:"returns"`
}

// NewPriceSeries validates dates and prices and derives the return series.
// Dates must be strictly increasing ISO-8601 days and prices positive.
func NewPriceSeries(ticker string, period Period, source DataSource, dates []string, prices []float64) (*PriceSeries, error) {
	if len(prices) < 2 {
		return nil, fmt.Errorf("%s: need at least 2 prices, got %d: %w", ticker, len(prices), ErrNoData)
	}
	if len(dates) != len(prices) {
		return nil, fmt.Errorf("%s: %d dates for %d prices", ticker, len(dates), len(prices))
	}

	var prev time.Time
	for i, d := range dates {
		day, err := time.Parse(DateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid date %q: %w", ticker, d, err)
		}
		if i > 0 && !day.After(prev) {
			return nil, fmt.Errorf("%s: dates not strictly increasing at %s", ticker, d)
		}
		prev = day

		p := prices[i]
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("%s: invalid price %v on %s", ticker, p, d)
		}
	}

	return &PriceSeries{
		Ticker:     ticker,
		Period:     period,
		DataSource: source,
		Dates:      append([]string(nil), dates...),
		Prices:     append([]float64(nil), prices...),
		Returns:    formulas.CalculateReturns(prices),
	}, nil
}

// StartDate returns the first date of the series.
func (s *PriceSeries) StartDate() string {
	if len(s.Dates) == 0 {
		return ""
	}
	return s.Dates[0]
}

// EndDate returns the last date of the series.
func (s *PriceSeries) EndDate() string {
	if len(s.Dates) == 0 {
		return ""
	}
	return s.Dates[len(s.Dates)-1]
}

// Tail keeps the last n+1 prices so the series spans at most n returns.
func (s *PriceSeries) Tail(n int) *PriceSeries {
	if n <= 0 || len(s.Prices) <= n+1 {
		return s
	}
	start := len(s.Prices) - n - 1
	return &PriceSeries{
		Ticker:     s.Ticker,
		Period:     s.Period,
		DataSource: s.DataSource,
		Dates:      s.Dates[start:],
		Prices:     s.Prices[start:],
		Returns:    s.Returns[start:],
	}
}
