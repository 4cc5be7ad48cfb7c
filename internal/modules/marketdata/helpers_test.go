package marketdata

import (
	"context"
	"sync/atomic"
	"time"
)

// fixtureNow is a Friday.
var fixtureNow = time.Date(2025, time.March, 14, 16, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixtureNow }

// stubSource returns a canned series or error and counts calls.
type stubSource struct {
	series *PriceSeries
	err    error
	calls  atomic.Int32
}

func (s *stubSource) FetchPrices(ctx context.Context, ticker string, period Period) (*PriceSeries, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.series, nil
}

func mustSeries(ticker string, source DataSource, prices ...float64) *PriceSeries {
	s, err := NewPriceSeries(ticker, Period1Month, source, weekdaysEndingAt(fixtureNow, len(prices)), prices)
	if err != nil {
		panic(err)
	}
	return s
}
