package marketdata

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// FallbackSource resolves a series with a single fetch per request: live data
// first, simulation when live data is unavailable. The returned series records
// which source produced it.
type FallbackSource struct {
	live      Source
	simulated Source
	mode      Mode
	log       zerolog.Logger
}

// NewFallbackSource creates a source that consults live and simulated according to mode.
func NewFallbackSource(live, simulated Source, mode Mode, log zerolog.Logger) *FallbackSource {
	if !mode.Valid() {
		mode = ModeAuto
	}
	return &FallbackSource{
		live:      live,
		simulated: simulated,
		mode:      mode,
		log:       log.With().Str("component", "market_data").Logger(),
	}
}

// FetchPrices implements Source.
func (f *FallbackSource) FetchPrices(ctx context.Context, ticker string, period Period) (*PriceSeries, error) {
	switch f.mode {
	case ModeSimulated:
		return f.simulated.FetchPrices(ctx, ticker, period)
	case ModeLive:
		return f.live.FetchPrices(ctx, ticker, period)
	}

	series, err := f.live.FetchPrices(ctx, ticker, period)
	if err == nil {
		return series, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	f.log.Warn().
		Err(err).
		Str("ticker", ticker).
		Msg("Live price data unavailable, using simulated data")

	series, simErr := f.simulated.FetchPrices(ctx, ticker, period)
	if simErr != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: live: %v, simulated: %w", ticker, err, simErr)
	}
	return series, nil
}

// Mode returns the configured mode.
func (f *FallbackSource) Mode() Mode {
	return f.mode
}
