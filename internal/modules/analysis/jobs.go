package analysis

import (
	"context"
	"time"

	"github.com/aristath/riskanalyzer/internal/events"
	"github.com/rs/zerolog"
)

// WatchlistRefreshJob re-analyzes the configured watchlist so history stays current.
type WatchlistRefreshJob struct {
	service *Service
	tickers []string
	period  string
	timeout time.Duration
	events  *events.Manager
	log     zerolog.Logger
}

// NewWatchlistRefreshJob creates the refresh job. eventManager may be nil.
func NewWatchlistRefreshJob(service *Service, tickers []string, period string, eventManager *events.Manager, log zerolog.Logger) *WatchlistRefreshJob {
	return &WatchlistRefreshJob{
		service: service,
		tickers: tickers,
		period:  period,
		timeout: 5 * time.Minute,
		events:  eventManager,
		log:     log.With().Str("job", "watchlist_refresh").Logger(),
	}
}

// Run analyzes every watchlist ticker. A failing ticker does not stop the rest.
func (j *WatchlistRefreshJob) Run() error {
	if len(j.tickers) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	analyzed, failed := 0, 0
	for _, ticker := range j.tickers {
		if _, err := j.service.Analyze(ctx, Request{Ticker: ticker, Period: j.period}); err != nil {
			j.log.Warn().Err(err).Str("ticker", ticker).Msg("Watchlist analysis failed")
			failed++
			continue
		}
		analyzed++
	}

	j.log.Info().
		Int("analyzed", analyzed).
		Int("failed", failed).
		Msg("Watchlist refresh completed")

	if j.events != nil {
		j.events.EmitTyped("scheduler", &events.WatchlistRefreshedData{Analyzed: analyzed, Failed: failed})
	}

	return ctx.Err()
}

// Name returns the job name for scheduling and logging.
func (j *WatchlistRefreshJob) Name() string {
	return "watchlist_refresh"
}

// RetentionJob deletes analyses older than the retention window.
type RetentionJob struct {
	service   *Service
	retention time.Duration
	log       zerolog.Logger
}

// NewRetentionJob creates the retention job.
func NewRetentionJob(service *Service, retention time.Duration, log zerolog.Logger) *RetentionJob {
	return &RetentionJob{
		service:   service,
		retention: retention,
		log:       log.With().Str("job", "analysis_retention").Logger(),
	}
}

// Run removes expired analyses.
func (j *RetentionJob) Run() error {
	if j.retention <= 0 {
		return nil
	}

	deleted, err := j.service.DeleteOlderThan(context.Background(), j.retention)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete old analyses")
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Old analyses removed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *RetentionJob) Name() string {
	return "analysis_retention"
}
