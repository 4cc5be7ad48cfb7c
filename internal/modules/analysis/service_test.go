package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aristath/riskanalyzer/internal/database"
	"github.com/aristath/riskanalyzer/internal/events"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/internal/modules/risk"
	testdb "github.com/aristath/riskanalyzer/internal/testing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu     sync.Mutex
	prices map[string][]float64
	source marketdata.DataSource
	calls  []string
}

func (f *fakeSource) FetchPrices(ctx context.Context, ticker string, period marketdata.Period) (*marketdata.PriceSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ticker)
	f.mu.Unlock()

	prices, ok := f.prices[ticker]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, marketdata.ErrNoData)
	}
	return marketdata.NewPriceSeries(ticker, period, f.source, testdb.FixtureDates(len(prices), testdb.FixtureTime), prices)
}

type fakeMarket struct {
	mc  risk.MarketContext
	err error
}

func (f fakeMarket) Current(ctx context.Context) (risk.MarketContext, error) {
	return f.mc, f.err
}

var testMarket = risk.MarketContext{
	VIXLevel:                19.5,
	MarketTrend:             "sideways",
	InterestRateEnvironment: "stable",
	MarketSentiment:         "neutral",
}

type testEnv struct {
	service *Service
	source  *fakeSource
	metrics *Metrics
	sub     *events.Subscription
	clock   time.Time
	clockMu sync.Mutex
}

func (e *testEnv) advance(d time.Duration) {
	e.clockMu.Lock()
	defer e.clockMu.Unlock()
	e.clock = e.clock.Add(d)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testdb.NewTestDB(t, database.NameAnalysis)
	bus := events.NewBus()
	env := &testEnv{
		source: &fakeSource{
			prices: map[string][]float64{
				"STEADY":   {100, 100.4, 100.9, 101.2, 101.8, 102.1, 102.7, 103.0, 103.6, 104.1, 104.5},
				"VOLATILE": testdb.VolatileFixturePrices,
				"MIXED":    testdb.FixturePrices,
			},
			source: marketdata.SourceSimulated,
		},
		metrics: NewMetrics(prometheus.NewRegistry()),
		sub:     bus.Subscribe(64),
		clock:   testdb.FixtureTime,
	}
	t.Cleanup(env.sub.Close)

	env.service = NewService(
		env.source,
		fakeMarket{mc: testMarket},
		NewRepository(db.Conn(), zerolog.Nop()),
		events.NewManager(bus, zerolog.Nop()),
		env.metrics,
		Config{DefaultRiskFreeRate: 0.02, DefaultPeriod: marketdata.Period1Year, CompareConcurrency: 2},
		zerolog.Nop(),
	)
	env.service.now = func() time.Time {
		env.clockMu.Lock()
		defer env.clockMu.Unlock()
		return env.clock
	}

	return env
}

func drainEvents(sub *events.Subscription) []events.Event {
	var out []events.Event
	for {
		select {
		case e := <-sub.C():
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestAnalyze_PersistsAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.service.Analyze(ctx, Request{Ticker: " volatile "})
	require.NoError(t, err)

	assert.Equal(t, "VOLATILE", a.Ticker)
	assert.Equal(t, "1y", a.Period)
	assert.Equal(t, "simulated", a.DataSource)
	assert.Equal(t, 4, a.Observations)
	assert.Equal(t, 0.02, a.RiskFreeRate)
	assert.InDelta(t, -0.10, a.Metrics.TotalReturn, 1e-12)
	assert.Equal(t, risk.LevelVeryHigh, a.Assessment.RiskLevel)
	assert.Equal(t, testMarket, a.Assessment.MarketContext)
	assert.NotEmpty(t, a.Assessment.OverallNarrative)
	require.NotNil(t, a.Technical)
	assert.Equal(t, 90.0, a.Technical.LastPrice)
	assert.InDelta(t, (90.0-110.0)/110.0, a.Technical.DrawdownFromPeak, 1e-12)
	assert.Equal(t, testdb.FixtureTime, a.CreatedAt)

	stored, err := env.service.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, stored)

	published := drainEvents(env.sub)
	require.Len(t, published, 1)
	assert.Equal(t, events.AnalysisCompleted, published[0].Type)
	assert.Equal(t, a.ID, published[0].Data["analysis_id"])

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.analyses.WithLabelValues("success", "simulated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.riskLevels.WithLabelValues("Very High")))
}

func TestAnalyze_ExplicitRiskFreeRate(t *testing.T) {
	env := newTestEnv(t)

	zero := 0.0
	withZero, err := env.service.Analyze(context.Background(), Request{Ticker: "MIXED", RiskFreeRate: &zero})
	require.NoError(t, err)
	withDefault, err := env.service.Analyze(context.Background(), Request{Ticker: "MIXED"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, withZero.RiskFreeRate)
	assert.Greater(t, withZero.Metrics.SharpeRatio, withDefault.Metrics.SharpeRatio)
	assert.Equal(t, withZero.Metrics.MaxDrawdown, withDefault.Metrics.MaxDrawdown)
}

func TestAnalyze_InvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	badRate := 1.5

	tests := []struct {
		name string
		req  Request
	}{
		{"bad ticker", Request{Ticker: "not a ticker"}},
		{"empty ticker", Request{Ticker: ""}},
		{"bad period", Request{Ticker: "STEADY", Period: "10y"}},
		{"bad rate", Request{Ticker: "STEADY", RiskFreeRate: &badRate}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Analyze(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
			assert.True(t, IsClientError(err))
		})
	}

	assert.Empty(t, env.source.calls)
}

func TestAnalyze_SourceFailure(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Analyze(context.Background(), Request{Ticker: "UNKNOWN"})
	assert.ErrorIs(t, err, marketdata.ErrNoData)
	assert.False(t, IsClientError(err))

	published := drainEvents(env.sub)
	require.Len(t, published, 1)
	assert.Equal(t, events.AnalysisFailed, published[0].Type)
	assert.Equal(t, "UNKNOWN", published[0].Data["ticker"])
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.analyses.WithLabelValues("failure", "none")))

	recent, err := env.service.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestAnalyze_MarketContextFailure(t *testing.T) {
	env := newTestEnv(t)
	env.service.market = fakeMarket{err: errors.New("context unavailable")}

	_, err := env.service.Analyze(context.Background(), Request{Ticker: "STEADY"})
	assert.ErrorContains(t, err, "context unavailable")
}

func TestCompare_PartialFailure(t *testing.T) {
	env := newTestEnv(t)

	comparison, err := env.service.Compare(context.Background(), CompareRequest{
		Tickers: []string{"steady", "VOLATILE", "MISSING", "STEADY"},
		Period:  "6mo",
	})
	require.NoError(t, err)

	require.Len(t, comparison.Analyses, 2)
	assert.Equal(t, "STEADY", comparison.Analyses[0].Ticker)
	assert.Equal(t, "VOLATILE", comparison.Analyses[1].Ticker)
	assert.Equal(t, "6mo", comparison.Analyses[0].Period)

	require.Len(t, comparison.Failures, 1)
	assert.Equal(t, "MISSING", comparison.Failures[0].Ticker)

	assert.Equal(t, "STEADY", comparison.Summary.BestSharpe)
	assert.Equal(t, "STEADY", comparison.Summary.SmallestDrawdown)
	assert.Equal(t, []string{"STEADY", "VOLATILE"}, comparison.Summary.RankingByRisk)

	// Duplicate tickers are analyzed once.
	assert.Len(t, env.source.calls, 3)
}

func TestCompare_AllFail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Compare(context.Background(), CompareRequest{Tickers: []string{"NOPE", "NADA"}})
	assert.ErrorIs(t, err, marketdata.ErrNoData)
}

func TestCompare_InvalidTicker(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Compare(context.Background(), CompareRequest{Tickers: []string{"STEADY", "bad ticker"}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, env.source.calls)
}

func TestSummarize(t *testing.T) {
	mk := func(ticker string, sharpe, vol, dd float64, score int) *Analysis {
		return &Analysis{
			Ticker:     ticker,
			Metrics:    risk.RiskMetrics{SharpeRatio: sharpe, AnnualizedVolatility: vol, MaxDrawdown: dd},
			Assessment: risk.RiskAssessment{RiskScore: score},
		}
	}

	summary := Summarize([]*Analysis{
		mk("AAA", 0.8, 0.25, -0.30, 1),
		mk("BBB", 1.6, 0.18, -0.12, -4),
		mk("CCC", 1.6, 0.12, -0.08, -4),
		mk("DDD", -0.3, 0.40, -0.45, 6),
	})

	assert.Equal(t, "BBB", summary.BestSharpe)
	assert.Equal(t, "CCC", summary.LowestVolatility)
	assert.Equal(t, "CCC", summary.SmallestDrawdown)
	assert.Equal(t, []string{"BBB", "CCC", "AAA", "DDD"}, summary.RankingByRisk)

	assert.Equal(t, []string{}, Summarize(nil).RankingByRisk)
}

func TestHistoryRecentAndRetention(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.service.Analyze(ctx, Request{Ticker: "STEADY"})
	require.NoError(t, err)
	env.advance(48 * time.Hour)
	_, err = env.service.Analyze(ctx, Request{Ticker: "MIXED"})
	require.NoError(t, err)
	env.advance(time.Hour)
	latest, err := env.service.Analyze(ctx, Request{Ticker: "STEADY"})
	require.NoError(t, err)

	history, err := env.service.History(ctx, "steady", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, latest.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	recent, err := env.service.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, latest.ID, recent[0].ID)

	counts, err := env.service.LevelCounts(ctx)
	require.NoError(t, err)
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 3, total)

	deleted, err := env.service.DeleteOlderThan(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.pruned))

	_, err = env.service.Get(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.service.Get(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, clampLimit(0))
	assert.Equal(t, defaultLimit, clampLimit(-5))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, maxLimit, clampLimit(10000))
}
