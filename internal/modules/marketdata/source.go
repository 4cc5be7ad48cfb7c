package marketdata

import (
	"context"
)

// Source fetches a daily price series for a ticker and period.
type Source interface {
	FetchPrices(ctx context.Context, ticker string, period Period) (*PriceSeries, error)
}

// Mode selects which sources FallbackSource consults.
type Mode string

const (
	// ModeAuto tries live data first and falls back to simulation.
	ModeAuto Mode = "auto"
	// ModeLive only uses live data.
	ModeLive Mode = "live"
	// ModeSimulated only uses simulated data.
	ModeSimulated Mode = "simulated"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeAuto, ModeLive, ModeSimulated:
		return true
	}
	return false
}
