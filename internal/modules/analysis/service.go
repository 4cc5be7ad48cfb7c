package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/riskanalyzer/internal/events"
	"github.com/aristath/riskanalyzer/internal/modules/marketdata"
	"github.com/aristath/riskanalyzer/internal/modules/risk"
	"github.com/aristath/riskanalyzer/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ContextSource supplies the market backdrop for assessments.
type ContextSource interface {
	Current(ctx context.Context) (risk.MarketContext, error)
}

// Config holds service defaults.
type Config struct {
	DefaultRiskFreeRate float64
	DefaultPeriod       marketdata.Period
	CompareConcurrency  int
}

// Service orchestrates a full analysis: fetch, calculate, classify, persist, publish.
type Service struct {
	prices     marketdata.Source
	market     ContextSource
	calculator *risk.Calculator
	classifier *risk.Classifier
	repo       *Repository
	events     *events.Manager
	metrics    *Metrics
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
}

// NewService creates the analysis service. eventManager and metrics may be nil.
func NewService(
	prices marketdata.Source,
	market ContextSource,
	repo *Repository,
	eventManager *events.Manager,
	metrics *Metrics,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if !cfg.DefaultPeriod.Valid() {
		cfg.DefaultPeriod = marketdata.DefaultPeriod
	}
	if cfg.CompareConcurrency < 1 {
		cfg.CompareConcurrency = 4
	}

	return &Service{
		prices:     prices,
		market:     market,
		calculator: risk.NewCalculator(),
		classifier: risk.NewClassifier(),
		repo:       repo,
		events:     eventManager,
		metrics:    metrics,
		cfg:        cfg,
		log:        log.With().Str("service", "analysis").Logger(),
		now:        time.Now,
	}
}

type resolvedRequest struct {
	ticker string
	period marketdata.Period
	rate   float64
}

func (s *Service) resolve(ticker, period string, rate *float64) (resolvedRequest, error) {
	symbol, err := marketdata.SanitizeTicker(ticker)
	if err != nil {
		return resolvedRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	p := s.cfg.DefaultPeriod
	if period != "" {
		if p, err = marketdata.ParsePeriod(period); err != nil {
			return resolvedRequest{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	r := s.cfg.DefaultRiskFreeRate
	if rate != nil {
		r = *rate
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= -1 || r >= 1 {
		return resolvedRequest{}, fmt.Errorf("%w: risk-free rate %v out of range", ErrInvalidRequest, r)
	}

	return resolvedRequest{ticker: symbol, period: p, rate: r}, nil
}

// Analyze runs and stores one analysis.
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	resolved, err := s.resolve(req.Ticker, req.Period, req.RiskFreeRate)
	if err != nil {
		return nil, err
	}

	a, err := s.analyze(ctx, resolved)
	if err != nil {
		s.metrics.observeFailure()
		if s.events != nil {
			s.events.EmitTyped("analysis", &events.AnalysisFailedData{
				Ticker: resolved.ticker,
				Period: resolved.period.String(),
				Error:  err.Error(),
			})
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) analyze(ctx context.Context, req resolvedRequest) (*Analysis, error) {
	start := s.now()

	series, err := s.prices.FetchPrices(ctx, req.ticker, req.period)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", req.ticker, err)
	}

	metrics, err := s.calculator.Calculate(series.Prices, series.Returns, req.rate)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate metrics for %s: %w", req.ticker, err)
	}

	marketContext, err := s.market.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get market context: %w", err)
	}

	assessment, err := s.classifier.Assess(req.ticker, *metrics, marketContext)
	if err != nil {
		return nil, fmt.Errorf("failed to assess %s: %w", req.ticker, err)
	}

	a := &Analysis{
		ID:           uuid.NewString(),
		Ticker:       req.ticker,
		Period:       req.period.String(),
		DataSource:   string(series.DataSource),
		StartDate:    series.StartDate(),
		EndDate:      series.EndDate(),
		Observations: len(series.Returns),
		RiskFreeRate: req.rate,
		Metrics:      *metrics,
		Assessment:   *assessment,
		Technical:    formulas.CalculateTechnicalSnapshot(series.Prices),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(start)
	s.metrics.observeSuccess(a.DataSource, string(a.Assessment.RiskLevel), elapsed.Seconds())

	if s.events != nil {
		s.events.EmitTyped("analysis", &events.AnalysisCompletedData{
			AnalysisID: a.ID,
			Ticker:     a.Ticker,
			Period:     a.Period,
			DataSource: a.DataSource,
			RiskLevel:  string(a.Assessment.RiskLevel),
			RiskScore:  a.Assessment.RiskScore,
			Sharpe:     finiteOrZero(a.Metrics.SharpeRatio),
			DurationMs: elapsed.Milliseconds(),
		})
	}

	s.log.Info().
		Str("id", a.ID).
		Str("ticker", a.Ticker).
		Str("period", a.Period).
		Str("data_source", a.DataSource).
		Str("risk_level", string(a.Assessment.RiskLevel)).
		Dur("duration", elapsed).
		Msg("Analysis completed")

	return a, nil
}

// Compare analyzes several tickers in parallel. Individual failures are
// reported in the result; an error is returned only when nothing succeeded.
func (s *Service) Compare(ctx context.Context, req CompareRequest) (*Comparison, error) {
	period := req.Period
	if period == "" {
		period = s.cfg.DefaultPeriod.String()
	}

	tickers := make([]string, 0, len(req.Tickers))
	seen := make(map[string]bool, len(req.Tickers))
	for _, raw := range req.Tickers {
		symbol, err := marketdata.SanitizeTicker(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if !seen[symbol] {
			seen[symbol] = true
			tickers = append(tickers, symbol)
		}
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers", ErrInvalidRequest)
	}

	results := make([]*Analysis, len(tickers))
	errs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.CompareConcurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			results[i], errs[i] = s.Analyze(gctx, Request{
				Ticker:       ticker,
				Period:       period,
				RiskFreeRate: req.RiskFreeRate,
			})
			return nil
		})
	}
	_ = g.Wait()

	comparison := &Comparison{
		Period:   period,
		Analyses: make([]*Analysis, 0, len(tickers)),
		Failures: make([]Failure, 0),
	}
	var firstErr error
	for i, ticker := range tickers {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = errs[i]
			}
			comparison.Failures = append(comparison.Failures, Failure{Ticker: ticker, Error: errs[i].Error()})
			continue
		}
		comparison.Analyses = append(comparison.Analyses, results[i])
	}

	if len(comparison.Analyses) == 0 {
		return nil, fmt.Errorf("no ticker could be analyzed: %w", firstErr)
	}

	comparison.Summary = Summarize(comparison.Analyses)

	if s.events != nil {
		s.events.EmitTyped("analysis", &events.ComparisonCompletedData{
			Tickers:    tickers,
			BestSharpe: comparison.Summary.BestSharpe,
			Failed:     len(comparison.Failures),
		})
	}

	return comparison, nil
}

// Summarize picks the leaders among analyses. Ties go to the earlier entry.
func Summarize(analyses []*Analysis) ComparisonSummary {
	if len(analyses) == 0 {
		return ComparisonSummary{RankingByRisk: []string{}}
	}

	best, calmest, shallowest := analyses[0], analyses[0], analyses[0]
	for _, a := range analyses[1:] {
		if a.Metrics.SharpeRatio > best.Metrics.SharpeRatio {
			best = a
		}
		if a.Metrics.AnnualizedVolatility < calmest.Metrics.AnnualizedVolatility {
			calmest = a
		}
		if a.Metrics.MaxDrawdown > shallowest.Metrics.MaxDrawdown {
			shallowest = a
		}
	}

	ranked := make([]*Analysis, len(analyses))
	copy(ranked, analyses)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Assessment.RiskScore != ranked[j].Assessment.RiskScore {
			return ranked[i].Assessment.RiskScore < ranked[j].Assessment.RiskScore
		}
		return ranked[i].Metrics.SharpeRatio > ranked[j].Metrics.SharpeRatio
	})

	ranking := make([]string, len(ranked))
	for i, a := range ranked {
		ranking[i] = a.Ticker
	}

	return ComparisonSummary{
		BestSharpe:       best.Ticker,
		LowestVolatility: calmest.Ticker,
		SmallestDrawdown: shallowest.Ticker,
		RankingByRisk:    ranking,
	}
}

// Get returns a stored analysis.
func (s *Service) Get(ctx context.Context, id string) (*Analysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// History returns the newest analyses for a ticker.
func (s *Service) History(ctx context.Context, ticker string, limit int) ([]*Analysis, error) {
	symbol, err := marketdata.SanitizeTicker(ticker)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return s.repo.ListByTicker(ctx, symbol, clampLimit(limit))
}

// Recent returns the newest analyses across all tickers.
func (s *Service) Recent(ctx context.Context, limit int) ([]*Analysis, error) {
	return s.repo.ListRecent(ctx, clampLimit(limit))
}

// DeleteOlderThan removes analyses older than maxAge.
func (s *Service) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge)
	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.metrics.observePruned(deleted)
	if deleted > 0 && s.events != nil {
		s.events.EmitTyped("analysis", &events.AnalysesPrunedData{Deleted: deleted, Cutoff: cutoff.UTC()})
	}
	return deleted, nil
}

// LevelCounts returns how many stored analyses carry each risk level.
func (s *Service) LevelCounts(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByLevel(ctx)
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, risk.ErrEmptySeries) ||
		errors.Is(err, risk.ErrLengthMismatch) ||
		errors.Is(err, risk.ErrNonPositivePrice)
}

const (
	defaultLimit = 20
	maxLimit     = 200
)

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultLimit
	case limit > maxLimit:
		return maxLimit
	}
	return limit
}

func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}
