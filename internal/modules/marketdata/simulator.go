package marketdata

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"time"
)

// Simulator generates deterministic geometric Brownian motion price paths.
// The same seed, ticker and period always produce the same prices.
type Simulator struct {
	seed uint64
	now  func() time.Time
}

// NewSimulator creates a simulator seeded with seed.
func NewSimulator(seed uint64) *Simulator {
	return &Simulator{seed: seed, now: time.Now}
}

// simulationParams are the per-ticker path characteristics.
type simulationParams struct {
	drift      float64 // annual
	volatility float64 // annual
	startPrice float64
}

func tickerHash(ticker string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(ticker))
	return h.Sum64()
}

func paramsFor(ticker string) simulationParams {
	h := tickerHash(ticker)
	return simulationParams{
		drift:      -0.05 + 0.25*float64(h%1000)/1000,
		volatility: 0.12 + 0.43*float64((h/1000)%1000)/1000,
		startPrice: 20 + float64((h>>20)%48000)/100,
	}
}

// FetchPrices simulates one close per weekday ending on the current day.
func (s *Simulator) FetchPrices(ctx context.Context, ticker string, period Period) (*PriceSeries, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := period.TradingDays()
	params := paramsFor(ticker)
	rng := rand.New(rand.NewPCG(s.seed, tickerHash(ticker)))

	const dt = 1.0 / 252
	drift := (params.drift - 0.5*params.volatility*params.volatility) * dt
	shock := params.volatility * math.Sqrt(dt)

	prices := make([]float64, n+1)
	prices[0] = params.startPrice
	for i := 1; i <= n; i++ {
		prices[i] = prices[i-1] * math.Exp(drift+shock*rng.NormFloat64())
	}

	return NewPriceSeries(ticker, period, SourceSimulated, weekdaysEndingAt(s.now(), n+1), prices)
}

// weekdaysEndingAt returns n weekday dates ending at or before end.
func weekdaysEndingAt(end time.Time, n int) []string {
	dates := make([]string, n)
	day := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for i := n - 1; i >= 0; {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			dates[i] = day.Format(DateLayout)
			i--
		}
		day = day.AddDate(0, 0, -1)
	}
	return dates
}
