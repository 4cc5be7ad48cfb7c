package marketdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceSeries(t *testing.T) {
	dates := []string{"2025-03-10", "2025-03-11", "2025-03-12"}
	prices := []float64{100, 110, 99}

	s, err := NewPriceSeries("AAPL", Period1Month, SourceReal, dates, prices)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", s.Ticker)
	assert.Equal(t, SourceReal, s.DataSource)
	require.Len(t, s.Returns, 2)
	assert.InDelta(t, 0.10, s.Returns[0], 1e-12)
	assert.InDelta(t, -0.10, s.Returns[1], 1e-12)
	assert.Equal(t, "2025-03-10", s.StartDate())
	assert.Equal(t, "2025-03-12", s.EndDate())

	// The series owns its slices.
	prices[0] = 1
	assert.Equal(t, 100.0, s.Prices[0])
}

func TestNewPriceSeries_Errors(t *testing.T) {
	tests := []struct {
		name   string
		dates  []string
		prices []float64
	}{
		{"single price", []string{"2025-03-10"}, []float64{100}},
		{"length mismatch", []string{"2025-03-10"}, []float64{100, 101}},
		{"bad date", []string{"2025-03-10", "03/11/2025"}, []float64{100, 101}},
		{"unordered dates", []string{"2025-03-11", "2025-03-10"}, []float64{100, 101}},
		{"duplicate dates", []string{"2025-03-10", "2025-03-10"}, []float64{100, 101}},
		{"zero price", []string{"2025-03-10", "2025-03-11"}, []float64{100, 0}},
		{"negative price", []string{"2025-03-10", "2025-03-11"}, []float64{-1, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPriceSeries("AAPL", Period1Month, SourceReal, tt.dates, tt.prices)
			assert.Error(t, err)
		})
	}

	_, err := NewPriceSeries("AAPL", Period1Month, SourceReal, nil, nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPriceSeries_Tail(t *testing.T) {
	dates := weekdaysEndingAt(fixtureNow, 6)
	s, err := NewPriceSeries("MSFT", Period1Month, SourceReal, dates, []float64{10, 11, 12, 13, 14, 15})
	require.NoError(t, err)

	tail := s.Tail(3)
	assert.Equal(t, []float64{12, 13, 14, 15}, tail.Prices)
	assert.Len(t, tail.Returns, 3)
	assert.Equal(t, dates[2:], tail.Dates)

	assert.Same(t, s, s.Tail(10))
	assert.Same(t, s, s.Tail(5))
}
