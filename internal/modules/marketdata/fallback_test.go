package marketdata

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackSource_AutoPrefersLive(t *testing.T) {
	live := &stubSource{series: mustSeries("AAPL", SourceReal, 100, 101, 102)}
	sim := &stubSource{series: mustSeries("AAPL", SourceSimulated, 50, 51, 52)}

	src := NewFallbackSource(live, sim, ModeAuto, zerolog.Nop())
	series, err := src.FetchPrices(context.Background(), "AAPL", Period1Month)
	require.NoError(t, err)

	assert.Equal(t, SourceReal, series.DataSource)
	assert.Equal(t, int32(1), live.calls.Load())
	assert.Equal(t, int32(0), sim.calls.Load())
}

func TestFallbackSource_AutoFallsBackOnce(t *testing.T) {
	live := &stubSource{err: errors.New("connection refused")}
	sim := &stubSource{series: mustSeries("AAPL", SourceSimulated, 50, 51, 52)}

	src := NewFallbackSource(live, sim, ModeAuto, zerolog.Nop())
	series, err := src.FetchPrices(context.Background(), "AAPL", Period1Month)
	require.NoError(t, err)

	// The label comes from the fetch that produced the data.
	assert.Equal(t, SourceSimulated, series.DataSource)
	assert.Equal(t, int32(1), live.calls.Load())
	assert.Equal(t, int32(1), sim.calls.Load())
}

func TestFallbackSource_BothFail(t *testing.T) {
	simErr := errors.New("simulator down")
	src := NewFallbackSource(&stubSource{err: errors.New("live down")}, &stubSource{err: simErr}, ModeAuto, zerolog.Nop())

	_, err := src.FetchPrices(context.Background(), "AAPL", Period1Month)
	assert.ErrorIs(t, err, simErr)
	assert.ErrorContains(t, err, "live down")
}

func TestFallbackSource_LiveModeNeverSimulates(t *testing.T) {
	liveErr := errors.New("live down")
	sim := &stubSource{series: mustSeries("AAPL", SourceSimulated, 50, 51)}

	src := NewFallbackSource(&stubSource{err: liveErr}, sim, ModeLive, zerolog.Nop())
	_, err := src.FetchPrices(context.Background(), "AAPL", Period1Month)

	assert.ErrorIs(t, err, liveErr)
	assert.Equal(t, int32(0), sim.calls.Load())
}

func TestFallbackSource_SimulatedModeSkipsLive(t *testing.T) {
	live := &stubSource{series: mustSeries("AAPL", SourceReal, 100, 101)}
	sim := &stubSource{series: mustSeries("AAPL", SourceSimulated, 50, 51)}

	src := NewFallbackSource(live, sim, ModeSimulated, zerolog.Nop())
	series, err := src.FetchPrices(context.Background(), "AAPL", Period1Month)
	require.NoError(t, err)

	assert.Equal(t, SourceSimulated, series.DataSource)
	assert.Equal(t, int32(0), live.calls.Load())
}

func TestFallbackSource_CanceledContextDoesNotSimulate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := &stubSource{series: mustSeries("AAPL", SourceSimulated, 50, 51)}
	src := NewFallbackSource(&stubSource{err: context.Canceled}, sim, ModeAuto, zerolog.Nop())

	_, err := src.FetchPrices(ctx, "AAPL", Period1Month)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), sim.calls.Load())
}

func TestFallbackSource_InvalidModeDefaultsToAuto(t *testing.T) {
	src := NewFallbackSource(&stubSource{}, &stubSource{}, Mode("bogus"), zerolog.Nop())
	assert.Equal(t, ModeAuto, src.Mode())
}
